package storage

import (
	"github.com/smartbch/moeingledger/types"
)

type Status uint8

const (
	OK Status = iota
	ERROR
	PERMISSION_DENIED
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case ERROR:
		return "error"
	case PERMISSION_DENIED:
		return "permission denied"
	}
	return "unknown"
}

// StateView is the key level storage a contract sees. Keys live in the
// scope of the contract, see types.ResourceAddressFromScope.
type StateView interface {
	Get(key string) ([]byte, Status)
	Set(key string, value []byte) Status
	Delete(key string) Status
	Exists(key string) bool
	Scope() string
}

// StateAdapter maps contract keys into the resource space under a scope
type StateAdapter struct {
	store KVStore
	scope string
}

var _ StateView = (*StateAdapter)(nil)

func NewStateAdapter(store KVStore, scope string) *StateAdapter {
	return &StateAdapter{store: store, scope: scope}
}

func (a *StateAdapter) Scope() string {
	return a.scope
}

func (a *StateAdapter) Address(key string) types.ResourceAddress {
	return types.ResourceAddressFromScope(a.scope, key)
}

func (a *StateAdapter) Get(key string) ([]byte, Status) {
	v := a.store.Get(a.Address(key))
	if v == nil {
		return nil, ERROR
	}
	return v, OK
}

func (a *StateAdapter) Set(key string, value []byte) Status {
	a.store.Set(a.Address(key), value)
	return OK
}

func (a *StateAdapter) Delete(key string) Status {
	a.store.Delete(a.Address(key))
	return OK
}

func (a *StateAdapter) Exists(key string) bool {
	return a.store.Get(a.Address(key)) != nil
}

// StateSentinelAdapter rejects every access to a resource whose lane is not
// in the shard mask and counts the bytes that were written. The lanes are
// expected to be locked by the caller for the adapter's whole life.
type StateSentinelAdapter struct {
	inner        *StateAdapter
	mask         types.ShardMask
	log2NumLanes uint32
	bytesWritten uint64
	violations   int
}

var _ StateView = (*StateSentinelAdapter)(nil)

func NewStateSentinelAdapter(store KVStore, scope string, mask types.ShardMask) *StateSentinelAdapter {
	log2, ok := mask.Log2Size()
	if !ok {
		panic("shard mask size must be a power of two")
	}
	return &StateSentinelAdapter{
		inner:        NewStateAdapter(store, scope),
		mask:         mask,
		log2NumLanes: log2,
	}
}

func (s *StateSentinelAdapter) Scope() string {
	return s.inner.Scope()
}

func (s *StateSentinelAdapter) allowed(key string) bool {
	lane := s.inner.Address(key).Lane(s.log2NumLanes)
	if s.mask.Get(lane) {
		return true
	}
	s.violations++
	return false
}

func (s *StateSentinelAdapter) Get(key string) ([]byte, Status) {
	if !s.allowed(key) {
		return nil, PERMISSION_DENIED
	}
	return s.inner.Get(key)
}

func (s *StateSentinelAdapter) Set(key string, value []byte) Status {
	if !s.allowed(key) {
		return PERMISSION_DENIED
	}
	s.bytesWritten += uint64(len(value))
	return s.inner.Set(key, value)
}

func (s *StateSentinelAdapter) Delete(key string) Status {
	if !s.allowed(key) {
		return PERMISSION_DENIED
	}
	return s.inner.Delete(key)
}

func (s *StateSentinelAdapter) Exists(key string) bool {
	if !s.allowed(key) {
		return false
	}
	return s.inner.Exists(key)
}

func (s *StateSentinelAdapter) BytesWritten() uint64 {
	return s.bytesWritten
}

// Violations is the number of accesses rejected so far
func (s *StateSentinelAdapter) Violations() int {
	return s.violations
}
