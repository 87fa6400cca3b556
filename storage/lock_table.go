package storage

import (
	"sync"
)

// LockTable holds one exclusive lock per shard
type LockTable struct {
	mtx    sync.Mutex
	cond   *sync.Cond
	locked []bool
}

func NewLockTable(numShards uint32) *LockTable {
	lt := &LockTable{locked: make([]bool, numShards)}
	lt.cond = sync.NewCond(&lt.mtx)
	return lt
}

// Lock blocks until the shard is acquired. It returns false only when the
// shard does not exist.
func (lt *LockTable) Lock(shard uint32) bool {
	lt.mtx.Lock()
	defer lt.mtx.Unlock()
	if int(shard) >= len(lt.locked) {
		return false
	}
	for lt.locked[shard] {
		lt.cond.Wait()
	}
	lt.locked[shard] = true
	return true
}

// TryLock acquires the shard only if nobody holds it
func (lt *LockTable) TryLock(shard uint32) bool {
	lt.mtx.Lock()
	defer lt.mtx.Unlock()
	if int(shard) >= len(lt.locked) || lt.locked[shard] {
		return false
	}
	lt.locked[shard] = true
	return true
}

// Unlock returns false if the shard was not locked
func (lt *LockTable) Unlock(shard uint32) bool {
	lt.mtx.Lock()
	defer lt.mtx.Unlock()
	if int(shard) >= len(lt.locked) || !lt.locked[shard] {
		return false
	}
	lt.locked[shard] = false
	lt.cond.Broadcast()
	return true
}

func (lt *LockTable) IsLocked(shard uint32) bool {
	lt.mtx.Lock()
	defer lt.mtx.Unlock()
	return int(shard) < len(lt.locked) && lt.locked[shard]
}

func (lt *LockTable) NumShards() uint32 {
	return uint32(len(lt.locked))
}
