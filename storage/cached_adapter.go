package storage

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/types"
)

type cachedValue struct {
	addr  types.ResourceAddress
	value []byte // nil means deleted
}

// CachedStorageAdapter buffers the writes of one transaction. Reads see the
// buffered writes first. The buffer reaches the underlying store only on
// Flush, Clear throws it away; exactly one of them ends the adapter's life.
type CachedStorageAdapter struct {
	parent KVStore
	cache  map[common.Hash]cachedValue
	done   bool
}

var _ KVStore = (*CachedStorageAdapter)(nil)

func NewCachedStorageAdapter(parent KVStore) *CachedStorageAdapter {
	return &CachedStorageAdapter{
		parent: parent,
		cache:  make(map[common.Hash]cachedValue),
	}
}

func (c *CachedStorageAdapter) Get(addr types.ResourceAddress) []byte {
	if cv, ok := c.cache[addr.Hash()]; ok {
		return cv.value
	}
	return c.parent.Get(addr)
}

func (c *CachedStorageAdapter) Set(addr types.ResourceAddress, value []byte) {
	c.mustBeOpen()
	if len(value) == 0 {
		c.Delete(addr)
		return
	}
	c.cache[addr.Hash()] = cachedValue{addr: addr, value: append([]byte{}, value...)}
}

func (c *CachedStorageAdapter) Delete(addr types.ResourceAddress) {
	c.mustBeOpen()
	c.cache[addr.Hash()] = cachedValue{addr: addr}
}

// NumPending returns the number of buffered writes
func (c *CachedStorageAdapter) NumPending() int {
	return len(c.cache)
}

// Flush applies the buffered writes to the parent in key order
func (c *CachedStorageAdapter) Flush() {
	c.mustBeOpen()
	c.done = true
	keys := make([]common.Hash, 0, len(c.cache))
	for k := range c.cache {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	for _, k := range keys {
		cv := c.cache[k]
		if cv.value == nil {
			c.parent.Delete(cv.addr)
		} else {
			c.parent.Set(cv.addr, cv.value)
		}
	}
	c.cache = nil
}

func (c *CachedStorageAdapter) Clear() {
	c.mustBeOpen()
	c.done = true
	c.cache = nil
}

func (c *CachedStorageAdapter) mustBeOpen() {
	if c.done {
		panic("cached storage adapter used after Flush or Clear")
	}
}
