package chaincode

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/smartbch/moeingledger/types"
)

// Identifier names a contract. Built-in chain code is named by a dotted
// lower case name such as "sbch.token", a smart contract by its address.
type Identifier struct {
	name    string
	address common.Address
	smart   bool
}

func ParseChainCodeName(name string) (Identifier, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return Identifier{}, errors.Wrapf(types.ErrInvalidIdentifier, "%q", name)
	}
	for _, part := range parts {
		if len(part) == 0 {
			return Identifier{}, errors.Wrapf(types.ErrInvalidIdentifier, "%q", name)
		}
		for _, r := range part {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
				return Identifier{}, errors.Wrapf(types.ErrInvalidIdentifier, "%q", name)
			}
		}
	}
	return Identifier{name: name}, nil
}

func SmartContractIdentifier(addr common.Address) Identifier {
	return Identifier{name: strings.ToLower(addr.Hex()), address: addr, smart: true}
}

// IdentifierFromTransaction resolves the target of tx from its contract mode
func IdentifierFromTransaction(tx *types.Transaction) (Identifier, error) {
	switch tx.ContractMode {
	case types.PRESENT:
		return SmartContractIdentifier(tx.ContractAddress), nil
	case types.CHAIN_CODE:
		return ParseChainCodeName(tx.ChainCode)
	}
	return Identifier{}, errors.Errorf("no identifier for contract mode %s", tx.ContractMode)
}

func (id Identifier) String() string {
	return id.name
}

// Scope is the state namespace of the contract
func (id Identifier) Scope() string {
	return id.name
}

func (id Identifier) IsSmartContract() bool {
	return id.smart
}

func (id Identifier) Address() common.Address {
	return id.address
}

func (id Identifier) IsEmpty() bool {
	return id.name == ""
}
