package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"

	"github.com/smartbch/moeingledger/types"
)

// ExecutionItem is one transaction of a planned block. It is created by the
// planner and owns its result once an executor has run it.
type ExecutionItem struct {
	Digest     common.Hash
	BlockIndex uint64
	SliceIndex uint32
	Mask       types.ShardMask
	Result     types.ContractExecutionResult
}

func NewExecutionItem(digest common.Hash, blockIndex uint64, sliceIndex uint32, mask types.ShardMask) *ExecutionItem {
	return &ExecutionItem{
		Digest:     digest,
		BlockIndex: blockIndex,
		SliceIndex: sliceIndex,
		Mask:       mask,
		Result:     types.ContractExecutionResult{Status: types.NOT_RUN},
	}
}

// ExecutionPlan holds the items of every slice, in block order
type ExecutionPlan [][]*ExecutionItem

func (p ExecutionPlan) NumItems() int {
	n := 0
	for _, s := range p {
		n += len(s)
	}
	return n
}

// ItemCounter tracks the items of one slice: how many have been handed to a
// worker and how many have not finished yet.
type ItemCounter struct {
	active    atomic.Int64
	remaining atomic.Int64
	done      chan struct{}
}

func NewItemCounter(total int) *ItemCounter {
	c := &ItemCounter{done: make(chan struct{})}
	c.remaining.Store(int64(total))
	if total == 0 {
		close(c.done)
	}
	return c
}

func (c *ItemCounter) Started() {
	c.active.Inc()
}

func (c *ItemCounter) Completed() {
	c.active.Dec()
	if c.remaining.Dec() == 0 {
		close(c.done)
	}
}

// Wait returns false if items are still running after timeout
func (c *ItemCounter) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.done:
		return true
	case <-timer.C:
		return false
	}
}

func (c *ItemCounter) Active() int64 {
	return c.active.Load()
}

func (c *ItemCounter) Remaining() int64 {
	return c.remaining.Load()
}
