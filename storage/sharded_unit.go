package storage

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/smartbch/moeingads"
	"github.com/smartbch/moeingads/store"
	"github.com/smartbch/moeingads/store/rabbit"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/types"
)

var (
	GuardStart = []byte{0, 0, 0, 0, 0, 0, 0, 0}
	GuardEnd   = []byte{255, 255, 255, 255, 255, 255, 255, 255, 255}
)

const (
	TrunkCacheSize = 1000
	// number of commits which can be reverted
	HistoryLength = 128
)

var ErrUnknownHash = errors.New("unknown state hash")

// the value a resource had before the first write of a commit period
type undoEntry struct {
	key    []byte
	old    []byte
	absent bool
}

type commitRecord struct {
	index uint64
	hash  common.Hash
	undo  []undoEntry
}

// ShardedUnit is the state of all lanes kept in one MoeingADS instance,
// accessed through a rabbit store over the trunk of the current height.
// The rabbit store is not thread safe, every access is serialized by mtx.
// Mutual exclusion between transactions is the job of the lock table.
type ShardedUnit struct {
	mtx    sync.Mutex
	root   *store.RootStore
	trunk  *store.TrunkStore
	rbt    *rabbit.RabbitStore
	height int64

	log2NumLanes uint32
	locks        *LockTable
	txs          *TxStore

	// first-write journal and latest values of the pending period
	undo    map[common.Hash]undoEntry
	pending map[common.Hash][]byte

	lastIndex uint64
	lastHash  common.Hash
	history   []commitRecord

	logger log.Logger
}

var _ Unit = (*ShardedUnit)(nil)

func NewShardedUnit(mads *moeingads.MoeingADS, txs *TxStore, log2NumLanes uint32, logger log.Logger) *ShardedUnit {
	u := &ShardedUnit{
		root:         store.NewRootStore(mads, nil),
		height:       1,
		log2NumLanes: log2NumLanes,
		locks:        NewLockTable(uint32(1) << log2NumLanes),
		txs:          txs,
		undo:         make(map[common.Hash]undoEntry),
		pending:      make(map[common.Hash][]byte),
		logger:       logger.With("module", "storage"),
	}
	if index, hash, ok := txs.LastCommit(); ok {
		u.lastIndex, u.lastHash = index, hash
		u.height = int64(index) + 1
	}
	u.openTrunk()
	return u
}

// OpenShardedUnit opens (or creates) the state and the tx store under dir
func OpenShardedUnit(dir string, log2NumLanes uint32, logger log.Logger) (*ShardedUnit, error) {
	mads, err := moeingads.NewMoeingADS(filepath.Join(dir, "state"), false, [][]byte{GuardStart, GuardEnd})
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}
	txs, err := OpenTxStore(filepath.Join(dir, "txs"))
	if err != nil {
		mads.Close()
		return nil, err
	}
	return NewShardedUnit(mads, txs, log2NumLanes, logger), nil
}

// NewMockShardedUnit keeps everything in memory, for tests and benchmarks
func NewMockShardedUnit(log2NumLanes uint32, logger log.Logger) *ShardedUnit {
	mads := moeingads.NewMoeingADS4Mock([][]byte{GuardStart, GuardEnd})
	return NewShardedUnit(mads, NewMemTxStore(), log2NumLanes, logger)
}

func (u *ShardedUnit) openTrunk() {
	u.root.SetHeight(u.height)
	u.trunk = u.root.GetTrunkStore(TrunkCacheSize).(*store.TrunkStore)
	rbt := rabbit.NewRabbitStore(u.trunk)
	u.rbt = &rbt
}

func (u *ShardedUnit) Log2NumLanes() uint32 {
	return u.log2NumLanes
}

func (u *ShardedUnit) Lock(shard uint32) bool {
	return u.locks.Lock(shard)
}

func (u *ShardedUnit) Unlock(shard uint32) bool {
	return u.locks.Unlock(shard)
}

func (u *ShardedUnit) Get(addr types.ResourceAddress) []byte {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.rbt.Get(addr.Bytes())
}

func (u *ShardedUnit) GetOrCreate(addr types.ResourceAddress) []byte {
	if v := u.Get(addr); v != nil {
		return v
	}
	return []byte{}
}

func (u *ShardedUnit) Set(addr types.ResourceAddress, value []byte) {
	if len(value) == 0 {
		u.Delete(addr)
		return
	}
	u.mtx.Lock()
	defer u.mtx.Unlock()
	u.journal(addr)
	v := append([]byte{}, value...)
	u.rbt.Set(addr.Bytes(), v)
	u.pending[addr.Hash()] = v
}

func (u *ShardedUnit) Delete(addr types.ResourceAddress) {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	u.journal(addr)
	u.rbt.Delete(addr.Bytes())
	u.pending[addr.Hash()] = nil
}

// journal records the committed value of addr before it is first overwritten
func (u *ShardedUnit) journal(addr types.ResourceAddress) {
	h := addr.Hash()
	if _, ok := u.undo[h]; ok {
		return
	}
	old := u.rbt.Get(addr.Bytes())
	u.undo[h] = undoEntry{
		key:    append([]byte{}, addr.Bytes()...),
		old:    append([]byte{}, old...),
		absent: old == nil,
	}
}

func (u *ShardedUnit) AddTransaction(tx *types.Transaction) error {
	return u.txs.AddTransaction(tx)
}

func (u *ShardedUnit) GetTransaction(digest common.Hash) (*types.Transaction, error) {
	return u.txs.GetTransaction(digest)
}

func (u *ShardedUnit) HasTransaction(digest common.Hash) bool {
	return u.txs.HasTransaction(digest)
}

// nextHash chains prevHash with the writes of one period in key order
func nextHash(prevHash common.Hash, index uint64, writes map[common.Hash][]byte) common.Hash {
	keys := make([]common.Hash, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	hasher := crypto.NewKeccakState()
	hasher.Write(prevHash[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)
	hasher.Write(buf[:])
	for _, k := range keys {
		v := writes[k]
		hasher.Write(k[:])
		binary.BigEndian.PutUint64(buf[:], uint64(len(v)))
		hasher.Write(buf[:])
		hasher.Write(v)
	}
	return common.BytesToHash(hasher.Sum(nil))
}

func (u *ShardedUnit) CurrentHash() common.Hash {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	if len(u.pending) == 0 {
		return u.lastHash
	}
	return nextHash(u.lastHash, u.lastIndex+1, u.pending)
}

func (u *ShardedUnit) LastCommitHash() common.Hash {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.lastHash
}

func (u *ShardedUnit) LastCommitIndex() uint64 {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.lastIndex
}

// flush writes the rabbit cache back to MoeingADS and moves to the next height
func (u *ShardedUnit) flush() {
	u.rbt.Close()
	u.rbt.WriteBack()
	u.trunk.Close(true)
	u.height++
	u.openTrunk()
}

// Commit persists the pending writes as the state of block index
func (u *ShardedUnit) Commit(index uint64) (common.Hash, error) {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	hash := nextHash(u.lastHash, index, u.pending)
	if err := u.txs.RecordCommit(index, hash); err != nil {
		return common.Hash{}, err
	}
	u.flush()

	rec := commitRecord{index: index, hash: hash, undo: make([]undoEntry, 0, len(u.undo))}
	for _, e := range u.undo {
		rec.undo = append(rec.undo, e)
	}
	u.history = append(u.history, rec)
	if len(u.history) > HistoryLength {
		u.history = u.history[len(u.history)-HistoryLength:]
	}
	u.lastIndex, u.lastHash = index, hash
	u.undo = make(map[common.Hash]undoEntry)
	u.pending = make(map[common.Hash][]byte)
	u.logger.Debug("Committed state", "index", index, "hash", hash.Hex())
	return hash, nil
}

// discardPending drops every uncommitted write
func (u *ShardedUnit) discardPending() {
	u.rbt.Close()
	rbt := rabbit.NewRabbitStore(u.trunk)
	u.rbt = &rbt
	u.undo = make(map[common.Hash]undoEntry)
	u.pending = make(map[common.Hash][]byte)
}

// RevertToHash rolls the state back to an earlier commit, discarding the
// pending writes and every commit made after it
func (u *ShardedUnit) RevertToHash(hash common.Hash, index uint64) error {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	u.discardPending()
	if hash == u.lastHash && index == u.lastIndex {
		return nil
	}
	pos := -1
	for i := len(u.history) - 1; i >= 0; i-- {
		if u.history[i].index == index && u.history[i].hash == hash {
			pos = i
			break
		}
	}
	if pos < 0 {
		return errors.Wrapf(ErrUnknownHash, "revert to %s at %d", hash.Hex(), index)
	}
	for i := len(u.history) - 1; i > pos; i-- {
		for _, e := range u.history[i].undo {
			if e.absent {
				u.rbt.Delete(e.key)
			} else {
				u.rbt.Set(e.key, e.old)
			}
		}
	}
	u.flush()
	if err := u.txs.ForgetCommitsAfter(index, hash); err != nil {
		return err
	}
	u.history = u.history[:pos+1]
	u.lastIndex, u.lastHash = index, hash
	u.logger.Info("Reverted state", "index", index, "hash", hash.Hex())
	return nil
}

func (u *ShardedUnit) HashExists(hash common.Hash, index uint64) bool {
	if index == 0 && hash == (common.Hash{}) {
		return true
	}
	h, ok := u.txs.CommitHash(index)
	return ok && h == hash
}

func (u *ShardedUnit) Close() error {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	var result error
	u.rbt.Close()
	u.trunk.Close(false)
	u.root.Close()
	if err := u.txs.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "close tx store"))
	}
	return result
}
