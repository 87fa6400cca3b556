package storage

import (
	"sort"

	"github.com/pkg/errors"
)

// ShardGuard holds a set of shard locks. The shards are always acquired in
// ascending order, so two guards can never wait on each other in a cycle.
// Release must be deferred right after a successful NewShardGuard.
type ShardGuard struct {
	locker Locker
	held   []uint32
}

func NewShardGuard(locker Locker, shards []uint32) (*ShardGuard, error) {
	ordered := make([]uint32, len(shards))
	copy(ordered, shards)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	g := &ShardGuard{locker: locker, held: make([]uint32, 0, len(ordered))}
	for i, shard := range ordered {
		if i > 0 && ordered[i-1] == shard {
			continue
		}
		if !locker.Lock(shard) {
			g.Release()
			return nil, errors.Errorf("unable to lock shard %d", shard)
		}
		g.held = append(g.held, shard)
	}
	return g, nil
}

func (g *ShardGuard) Shards() []uint32 {
	return g.held
}

// Release unlocks every held shard in reverse order, it is safe to call twice
func (g *ShardGuard) Release() {
	if g == nil {
		return
	}
	for i := len(g.held) - 1; i >= 0; i-- {
		g.locker.Unlock(g.held[i])
	}
	g.held = nil
}
