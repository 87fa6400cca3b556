package ledger

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

// StakeUpdateQueue holds the stake changes which wait for their block. A
// later update for the same address and block replaces the earlier one.
type StakeUpdateQueue struct {
	updates map[uint64]map[common.Address]uint64
}

func NewStakeUpdateQueue() *StakeUpdateQueue {
	return &StakeUpdateQueue{updates: make(map[uint64]map[common.Address]uint64)}
}

func (q *StakeUpdateQueue) AddStakeUpdate(blockIndex uint64, from common.Address, amount uint64) {
	byAddr, ok := q.updates[blockIndex]
	if !ok {
		byAddr = make(map[common.Address]uint64)
		q.updates[blockIndex] = byAddr
	}
	byAddr[from] = amount
}

func (q *StakeUpdateQueue) Size() int {
	n := 0
	for _, byAddr := range q.updates {
		n += len(byAddr)
	}
	return n
}

// Updates lists the queue ordered by block and then address
func (q *StakeUpdateQueue) Updates() types.StakeUpdates {
	res := make(types.StakeUpdates, 0, q.Size())
	for blockIndex, byAddr := range q.updates {
		for addr, amount := range byAddr {
			res = append(res, types.StakeUpdate{BlockIndex: blockIndex, From: addr, Amount: amount})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].BlockIndex != res[j].BlockIndex {
			return res[i].BlockIndex < res[j].BlockIndex
		}
		return bytes.Compare(res[i].From[:], res[j].From[:]) < 0
	})
	return res
}

// takeDue removes and returns the updates whose block is not after blockIndex
func (q *StakeUpdateQueue) takeDue(blockIndex uint64) types.StakeUpdates {
	var due types.StakeUpdates
	for _, u := range q.Updates() {
		if u.BlockIndex > blockIndex {
			break
		}
		due = append(due, u)
		delete(q.updates, u.BlockIndex)
	}
	return due
}

// StakeManager tracks the active stake of every address. Its state is kept
// in the ledger under types.StakeQueueResource.
type StakeManager struct {
	mtx          sync.Mutex
	queue        *StakeUpdateQueue
	active       map[common.Address]uint64
	currentBlock uint64
}

func NewStakeManager() *StakeManager {
	return &StakeManager{
		queue:  NewStakeUpdateQueue(),
		active: make(map[common.Address]uint64),
	}
}

func (m *StakeManager) Load(store storage.KVStore) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.queue = NewStakeUpdateQueue()
	m.active = make(map[common.Address]uint64)
	m.currentBlock = 0
	bz := store.Get(types.StakeQueueResource())
	if bz == nil {
		return nil
	}
	var state types.StakeState
	if _, err := state.UnmarshalMsg(bz); err != nil {
		return errors.Wrap(err, "decode stake state")
	}
	m.currentBlock = state.CurrentBlock
	for _, u := range state.Queue {
		m.queue.AddStakeUpdate(u.BlockIndex, u.From, u.Amount)
	}
	for _, v := range state.Active {
		m.active[v.Address] = v.Stake
	}
	return nil
}

func (m *StakeManager) Save(store storage.KVStore) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	state := types.StakeState{
		CurrentBlock: m.currentBlock,
		Queue:        m.queue.Updates(),
		Active:       m.activeValidators(),
	}
	bz, err := state.MarshalMsg(nil)
	if err != nil {
		return errors.Wrap(err, "encode stake state")
	}
	store.Set(types.StakeQueueResource(), bz)
	return nil
}

func (m *StakeManager) UpdateQueue() *StakeUpdateQueue {
	return m.queue
}

// UpdateCurrentBlock applies every queued update which is due at blockIndex.
// An update to zero stake removes the address from the active set.
func (m *StakeManager) UpdateCurrentBlock(blockIndex uint64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, u := range m.queue.takeDue(blockIndex) {
		if u.Amount == 0 {
			delete(m.active, u.From)
		} else {
			m.active[u.From] = u.Amount
		}
	}
	if blockIndex > m.currentBlock {
		m.currentBlock = blockIndex
	}
}

func (m *StakeManager) CurrentBlock() uint64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.currentBlock
}

func (m *StakeManager) ActiveValidators() types.Validators {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.activeValidators()
}

func (m *StakeManager) activeValidators() types.Validators {
	vals := make(types.Validators, 0, len(m.active))
	for addr, stake := range m.active {
		vals = append(vals, types.Validator{Address: addr, Stake: stake})
	}
	vals.Sort()
	return vals
}
