package ledger

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/storage"
)

type cacheEntry struct {
	contract   chaincode.Contract
	lastAccess time.Time
}

// ChainCodeCache keeps instantiated contracts so that their code is not
// loaded again for every transaction. Entries idle for a whole lifetime are
// dropped by a sweep which runs every maintenanceInterval lookups; the LRU
// bound only matters when more contracts are live than it can hold.
type ChainCodeCache struct {
	mtx                 sync.Mutex
	entries             *lru.Cache[string, *cacheEntry]
	registry            *chaincode.Registry
	engine              chaincode.Engine
	lifetime            time.Duration
	maintenanceInterval uint64
	lookups             uint64
	now                 func() time.Time
}

func NewChainCodeCache(registry *chaincode.Registry, engine chaincode.Engine, size int,
	lifetime time.Duration, maintenanceInterval uint64) *ChainCodeCache {

	entries, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		panic(err)
	}
	if maintenanceInterval == 0 {
		maintenanceInterval = 1
	}
	return &ChainCodeCache{
		entries:             entries,
		registry:            registry,
		engine:              engine,
		lifetime:            lifetime,
		maintenanceInterval: maintenanceInterval,
		now:                 time.Now,
	}
}

// SetClock replaces the time source, for tests
func (c *ChainCodeCache) SetClock(now func() time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = now
}

// Lookup returns nil when the contract can be neither loaded nor created.
// Failures are not cached, the next lookup tries again.
func (c *ChainCodeCache) Lookup(id chaincode.Identifier, store storage.KVStore) chaincode.Contract {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.lookups++
	if c.lookups%c.maintenanceInterval == 0 {
		c.runMaintenance()
	}

	now := c.now()
	if entry, ok := c.entries.Get(id.String()); ok {
		entry.lastAccess = now
		return entry.contract
	}
	contract := c.create(id, store)
	if contract == nil {
		return nil
	}
	c.entries.Add(id.String(), &cacheEntry{contract: contract, lastAccess: now})
	return contract
}

func (c *ChainCodeCache) create(id chaincode.Identifier, store storage.KVStore) chaincode.Contract {
	if id.IsSmartContract() {
		if sc := chaincode.LoadSmartContract(store, id.Address(), c.engine); sc != nil {
			return sc
		}
	}
	return c.registry.Create(id.String())
}

func (c *ChainCodeCache) runMaintenance() {
	now := c.now()
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if ok && now.Sub(entry.lastAccess) >= c.lifetime {
			c.entries.Remove(key)
		}
	}
}

func (c *ChainCodeCache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.entries.Len()
}
