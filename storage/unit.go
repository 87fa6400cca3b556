package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/types"
)

// KVStore is the resource level read/write surface that the per-transaction
// adapters stack on top of each other. Get returns nil for an absent
// resource, setting an empty value deletes the resource.
type KVStore interface {
	Get(addr types.ResourceAddress) []byte
	Set(addr types.ResourceAddress, value []byte)
	Delete(addr types.ResourceAddress)
}

// Locker provides per-shard mutual exclusion. Lock and Unlock must be
// paired and are not reentrant.
type Locker interface {
	Lock(shard uint32) bool
	Unlock(shard uint32) bool
}

// Unit is the storage engine consumed by the execution core
type Unit interface {
	KVStore
	Locker

	// GetOrCreate never returns nil, an absent resource reads as an empty value
	GetOrCreate(addr types.ResourceAddress) []byte
	Log2NumLanes() uint32

	AddTransaction(tx *types.Transaction) error
	GetTransaction(digest common.Hash) (*types.Transaction, error)
	HasTransaction(digest common.Hash) bool

	// CurrentHash covers the committed state and the pending writes
	CurrentHash() common.Hash
	LastCommitHash() common.Hash
	LastCommitIndex() uint64
	Commit(index uint64) (common.Hash, error)
	RevertToHash(hash common.Hash, index uint64) error
	HashExists(hash common.Hash, index uint64) bool

	Close() error
}
