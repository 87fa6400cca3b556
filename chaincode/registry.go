package chaincode

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/smartbch/moeingledger/types"
)

type Factory func() Contract

// Registry maps chain code names to their factories. It is built once at
// start up and handed to whoever creates contracts.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry knows the built-in chain code
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(types.TokenContractName, func() Contract { return NewTokenContract() })
	r.MustRegister(types.GovernanceContractName, func() Contract { return NewGovernanceContract() })
	return r
}

func (r *Registry) Register(name string, factory Factory) error {
	if _, err := ParseChainCodeName(name); err != nil {
		return err
	}
	if _, ok := r.factories[name]; ok {
		return errors.Errorf("chain code %s registered twice", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Create returns nil for an unknown name
func (r *Registry) Create(name string) Contract {
	factory, ok := r.factories[name]
	if !ok {
		return nil
	}
	return factory()
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
