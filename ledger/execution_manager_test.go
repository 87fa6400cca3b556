package ledger

import (
	"context"
	"encoding/json"
	"math/big"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/seehuhn/mt19937"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/config"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

type settleCall struct {
	miner        common.Address
	blockIndex   uint64
	amount       uint64
	stakeUpdates types.StakeUpdates
}

// fakeBackend is shared by the fake executors of one manager
type fakeBackend struct {
	mtx      sync.Mutex
	statuses map[common.Hash]types.ContractExecutionStatus
	seqs     map[common.Hash]uint64
	executed []uint32 // slice index of every executed item
	settles  []settleCall
	gate     chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		statuses: make(map[common.Hash]types.ContractExecutionStatus),
		seqs:     make(map[common.Hash]uint64),
	}
}

func (b *fakeBackend) factory() ExecutorFactory {
	return func() TxExecutor { return &fakeExecutor{backend: b} }
}

func (b *fakeBackend) numExecuted() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return len(b.executed)
}

type fakeExecutor struct {
	backend *fakeBackend
}

func (e *fakeExecutor) Execute(digest common.Hash, blockIndex uint64, sliceIndex uint32,
	mask types.ShardMask) types.ContractExecutionResult {

	b := e.backend
	b.mtx.Lock()
	gate := b.gate
	status := b.statuses[digest]
	seq := b.seqs[digest]
	b.mtx.Unlock()
	if gate != nil {
		<-gate
	}

	b.mtx.Lock()
	b.executed = append(b.executed, sliceIndex)
	b.mtx.Unlock()
	res := types.ContractExecutionResult{Status: status, Fee: 1, Sequence: seq}
	if status == types.SUCCESS {
		res.StakeUpdates = types.StakeUpdates{{BlockIndex: blockIndex + 1, From: common.BytesToAddress(digest[:]), Amount: 1}}
	}
	return res
}

func (e *fakeExecutor) SettleFees(miner common.Address, blockIndex uint64, amount uint64, log2NumLanes uint32,
	stakeUpdates types.StakeUpdates) error {

	b := e.backend
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.settles = append(b.settles, settleCall{miner, blockIndex, amount, stakeUpdates})
	return nil
}

func newTestManager(t *testing.T, cfg *config.Config, unit storage.Unit, factory ExecutorFactory) *ExecutionManager {
	m := NewExecutionManager(cfg, unit, factory, log.NewNopLogger())
	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Stop() })
	return m
}

func waitIdle(t *testing.T, m *ExecutionManager) *BlockOutcome {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, m.WaitForIdle(ctx))
	require.Equal(t, IDLE, m.State())
	return m.LastOutcome()
}

// fakeBlock has one item per status, sliced as given
func fakeBlock(b *fakeBackend, number uint64, slices ...[]types.ContractExecutionStatus) *types.Block {
	blk := &types.Block{
		Number:       number,
		Hash:         common.BigToHash(big.NewInt(int64(1000 + number))),
		Miner:        common.HexToAddress("0x3171e4"),
		Log2NumLanes: 1,
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for i, statuses := range slices {
		var slice types.Slice
		for j, status := range statuses {
			digest := common.BigToHash(big.NewInt(int64(number*10000 + uint64(i*100+j))))
			b.statuses[digest] = status
			slice.Transactions = append(slice.Transactions, types.TransactionLayout{
				Digest: digest,
				Mask:   types.NewShardMaskFromLanes(1, uint32(j%2)),
			})
		}
		blk.Slices = append(blk.Slices, slice)
	}
	return blk
}

func TestManagerLifecycle(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := NewExecutionManager(testConfig(), unit, b.factory(), log.NewNopLogger())
	blk := fakeBlock(b, 1, []types.ContractExecutionStatus{types.SUCCESS})

	require.Equal(t, NOT_STARTED, m.Execute(blk))
	require.NoError(t, m.Start())
	require.Equal(t, IDLE, m.State())
	require.ErrorIs(t, m.Abort(), ErrAbortNotSupported)

	m.SetLastProcessedBlock(common.HexToHash("0x77"))
	require.Equal(t, common.HexToHash("0x77"), m.LastProcessedBlock())

	require.NoError(t, m.Stop())
	require.Equal(t, NOT_STARTED, m.Execute(blk))
}

func TestManagerCompletesBlocks(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())

	for number := uint64(1); number <= 2; number++ {
		blk := fakeBlock(b, number,
			[]types.ContractExecutionStatus{types.SUCCESS, types.SUCCESS, types.TRANSFER_FAILURE},
			[]types.ContractExecutionStatus{types.SUCCESS},
			[]types.ContractExecutionStatus{types.INSUFFICIENT_CHARGE, types.SUCCESS, types.SUCCESS, types.SUCCESS, types.SUCCESS},
		)
		require.Equal(t, SCHEDULED, m.Execute(blk))
		outcome := waitIdle(t, m)

		require.Equal(t, COMPLETED, outcome.Final)
		require.Equal(t, blk.Hash, outcome.Block)
		require.Equal(t, 7, outcome.Counts[types.CATEGORY_SUCCESS])
		require.Equal(t, 2, outcome.Counts[types.CATEGORY_NORMAL_ERROR])
		require.Equal(t, uint64(9), outcome.Fees)
		require.Len(t, outcome.StakeUpdates, 7)
		require.NoError(t, outcome.SettleErr)
		require.Equal(t, blk.Hash, m.LastProcessedBlock())
		stateHash, ok := m.BlockStateHash(blk.Hash)
		require.True(t, ok)
		require.Equal(t, unit.CurrentHash(), stateHash)

		digest := blk.Slices[0].Transactions[2].Digest
		res, ok := m.TransactionResult(digest)
		require.True(t, ok)
		require.Equal(t, types.TRANSFER_FAILURE, res.Status)
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	// fees are settled exactly once per block
	require.Len(t, b.settles, 2)
	require.Equal(t, settleCall{common.HexToAddress("0x3171e4"), 2, 9, b.settles[1].stakeUpdates}, b.settles[1])
	require.Len(t, b.settles[1].stakeUpdates, 7)
	require.Len(t, b.executed, 18)
	// slices run one after the other
	for i := 1; i < 9; i++ {
		require.LessOrEqual(t, b.executed[i-1], b.executed[i])
	}
}

func TestManagerFailsBlockWithInvalidTx(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())
	before := m.LastProcessedBlock()

	blk := fakeBlock(b, 1,
		[]types.ContractExecutionStatus{types.SUCCESS},
		[]types.ContractExecutionStatus{types.SUCCESS, types.TX_PERMISSION_DENIED},
		[]types.ContractExecutionStatus{types.SUCCESS},
	)
	require.Equal(t, SCHEDULED, m.Execute(blk))
	outcome := waitIdle(t, m)
	require.Equal(t, FAILED, outcome.Final)
	require.Equal(t, 1, outcome.Counts[types.CATEGORY_BLOCK_INVALIDATING_ERROR])
	require.Equal(t, 3, b.numExecuted())
	require.Empty(t, b.settles)
	require.Equal(t, before, m.LastProcessedBlock())
	_, ok := m.BlockStateHash(blk.Hash)
	require.False(t, ok)
}

func TestManagerStallsOnInternalError(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())

	blk := fakeBlock(b, 1,
		[]types.ContractExecutionStatus{types.SUCCESS, types.INTERNAL_ERROR},
		[]types.ContractExecutionStatus{types.SUCCESS},
	)
	require.Equal(t, SCHEDULED, m.Execute(blk))
	outcome := waitIdle(t, m)
	require.Equal(t, STALLED, outcome.Final)
	require.Equal(t, 2, b.numExecuted())
	require.Empty(t, b.settles)

	// the manager takes the next block afterwards
	blk = fakeBlock(b, 2, []types.ContractExecutionStatus{types.SUCCESS})
	require.Equal(t, SCHEDULED, m.Execute(blk))
	require.Equal(t, COMPLETED, waitIdle(t, m).Final)
}

func TestManagerRejectsWhileRunning(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())
	gate := make(chan struct{})
	b.gate = gate
	slowBefore := testutil.ToFloat64(slowSlices)

	blk := fakeBlock(b, 1, []types.ContractExecutionStatus{types.SUCCESS, types.SUCCESS})
	require.Equal(t, SCHEDULED, m.Execute(blk))
	require.Equal(t, ALREADY_RUNNING, m.Execute(fakeBlock(b, 2, []types.ContractExecutionStatus{types.SUCCESS})))

	// the slice outlives its wait, which is reported but not abandoned
	time.Sleep(250 * time.Millisecond)
	require.Equal(t, RUNNING, m.State())
	close(gate)
	require.Equal(t, COMPLETED, waitIdle(t, m).Final)
	require.Greater(t, testutil.ToFloat64(slowSlices), slowBefore)
}

func TestManagerOrdersStakeUpdatesByWriteBack(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())

	blk := fakeBlock(b, 1, []types.ContractExecutionStatus{types.SUCCESS, types.SUCCESS, types.SUCCESS})
	txs := blk.Slices[0].Transactions
	b.mtx.Lock()
	b.seqs[txs[0].Digest] = 30
	b.seqs[txs[1].Digest] = 10
	b.seqs[txs[2].Digest] = 20
	b.mtx.Unlock()

	require.Equal(t, SCHEDULED, m.Execute(blk))
	outcome := waitIdle(t, m)
	require.Equal(t, COMPLETED, outcome.Final)
	require.Len(t, outcome.StakeUpdates, 3)
	for i, pos := range []int{1, 2, 0} {
		require.Equal(t, common.BytesToAddress(txs[pos].Digest[:]), outcome.StakeUpdates[i].From)
	}
}

func TestManagerKeepsLastStakeOfSender(t *testing.T) {
	const log2NumLanes = 1
	unit := newTestUnit(t, log2NumLanes)
	cfg := testConfig()
	m := newTestManager(t, cfg, unit,
		DefaultExecutorFactory(unit, chaincode.DefaultRegistry(), testEngine{}, cfg, log.NewNopLogger()))
	sender := accountInLane(t, log2NumLanes, 0)
	setBalance(unit, sender.addr, 10000)

	expected := uint64(0)
	for number := uint64(1); number <= 4; number++ {
		// both stake from the same account in one slice, the shard guard
		// decides which one goes first
		var slice types.Slice
		for i, amount := range []uint64{10, 5} {
			data, _ := json.Marshal(map[string]uint64{"amount": amount * number})
			tx := sender.sign(t, &types.Transaction{
				From:         sender.addr,
				ValidUntil:   100,
				ChargeRate:   1,
				ChargeLimit:  100,
				ContractMode: types.CHAIN_CODE,
				ChainCode:    types.TokenContractName,
				Action:       "addStake",
				Data:         data,
				Mask:         maskOf(log2NumLanes, sender.addr),
				Counter:      number*10 + uint64(i),
			})
			submit(t, unit, tx)
			slice.Transactions = append(slice.Transactions, types.NewTransactionLayout(tx, log2NumLanes))
			expected += amount * number
		}
		blk := &types.Block{Number: number, Hash: common.BigToHash(big.NewInt(int64(500 + number))),
			Miner: common.HexToAddress("0x3171e4"), Log2NumLanes: log2NumLanes, Slices: []types.Slice{slice}}

		require.Equal(t, SCHEDULED, m.Execute(blk))
		outcome := waitIdle(t, m)
		require.Equal(t, COMPLETED, outcome.Final)
		require.Equal(t, 2, outcome.Counts[types.CATEGORY_SUCCESS])

		info := types.NewAccountInfo(unit.Get(types.TokenResource(sender.addr)))
		require.Equal(t, expected, info.Stake())

		stakes := NewStakeManager()
		require.NoError(t, stakes.Load(unit))
		var queued []types.StakeUpdate
		for _, u := range stakes.UpdateQueue().Updates() {
			if u.BlockIndex == number+chaincode.StakeActivationDelay {
				queued = append(queued, u)
			}
		}
		require.Equal(t, []types.StakeUpdate{{BlockIndex: number + chaincode.StakeActivationDelay,
			From: sender.addr, Amount: expected}}, queued)
	}
}

func TestManagerUnableToPlan(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	m := newTestManager(t, testConfig(), unit, b.factory())

	blk := fakeBlock(b, 1, []types.ContractExecutionStatus{types.SUCCESS})
	blk.Slices[0].Transactions[0].Mask = types.FullShardMask(8)
	require.Equal(t, UNABLE_TO_PLAN, m.Execute(blk))

	blk = fakeBlock(b, 2, []types.ContractExecutionStatus{types.SUCCESS})
	blk.Log2NumLanes = 3
	require.Equal(t, UNABLE_TO_PLAN, m.Execute(blk))
	require.Equal(t, IDLE, m.State())
	require.Equal(t, 0, b.numExecuted())
}

func TestManagerDropsFeesWithoutIdleExecutor(t *testing.T) {
	unit := newTestUnit(t, 1)
	b := newFakeBackend()
	cfg := testConfig()
	m := newTestManager(t, cfg, unit, b.factory())
	droppedBefore := testutil.ToFloat64(feeSettlementsDropped)

	// hold every executor so that settlement finds none
	slots := make([]int, 0, cfg.NumExecutors)
	for i := 0; i < cfg.NumExecutors; i++ {
		slots = append(slots, <-m.idle)
	}
	blk := fakeBlock(b, 1)
	require.Equal(t, SCHEDULED, m.Execute(blk))
	outcome := waitIdle(t, m)
	for _, slot := range slots {
		m.idle <- slot
	}

	require.Equal(t, COMPLETED, outcome.Final)
	require.ErrorIs(t, outcome.SettleErr, ErrFeeSettlementTimeout)
	require.Empty(t, b.settles)
	require.Equal(t, droppedBefore+1, testutil.ToFloat64(feeSettlementsDropped))
	require.Equal(t, blk.Hash, m.LastProcessedBlock())
}

func TestManagerDisjointShards(t *testing.T) {
	unit := newTestUnit(t, 1)
	cfg := testConfig()
	m := newTestManager(t, cfg, unit,
		DefaultExecutorFactory(unit, chaincode.DefaultRegistry(), testEngine{}, cfg, log.NewNopLogger()))

	var slice types.Slice
	var receivers []common.Address
	for lane := uint32(0); lane < 2; lane++ {
		sender := accountInLane(t, 1, lane)
		receiver := accountInLane(t, 1, lane).addr
		receivers = append(receivers, receiver)
		setBalance(unit, sender.addr, 100)
		tx := sender.sign(t, &types.Transaction{
			From:        sender.addr,
			ValidUntil:  10,
			ChargeRate:  1,
			ChargeLimit: 5,
			Mask:        types.NewShardMaskFromLanes(1, lane),
			Transfers:   []types.Transfer{{To: receiver, Amount: 7}},
		})
		submit(t, unit, tx)
		slice.Transactions = append(slice.Transactions, types.NewTransactionLayout(tx, 1))
	}
	miner := common.HexToAddress("0x3171e4")
	blk := &types.Block{Number: 1, Hash: common.HexToHash("0xb1"), Miner: miner, Log2NumLanes: 1,
		Slices: []types.Slice{slice}}

	require.Equal(t, SCHEDULED, m.Execute(blk))
	outcome := waitIdle(t, m)
	require.Equal(t, COMPLETED, outcome.Final)
	require.Equal(t, 2, outcome.Counts[types.CATEGORY_SUCCESS])
	for _, layout := range slice.Transactions {
		res, ok := m.TransactionResult(layout.Digest)
		require.True(t, ok)
		require.Equal(t, types.SUCCESS, res.Status)
	}
	for _, r := range receivers {
		require.Equal(t, uint64(7), balanceOf(unit, r))
	}
	require.Equal(t, uint64(2), balanceOf(unit, miner))
}

// randomBlock builds slices of random transfers, no two transactions of a
// slice share a lane
func randomBlock(t *testing.T, rng *rand.Rand, number uint64, accounts []testAccount, log2NumLanes uint32,
	counter *uint64) ([]*types.Transaction, *types.Block) {

	blk := &types.Block{
		Number:       number,
		Hash:         common.BigToHash(big.NewInt(int64(number))),
		Miner:        common.HexToAddress("0x3171e4"),
		Log2NumLanes: log2NumLanes,
	}
	var txs []*types.Transaction
	for s := 0; s < 4; s++ {
		var slice types.Slice
		used := types.NewShardMask(uint32(1) << log2NumLanes)
		for attempt := 0; attempt < 8; attempt++ {
			sender := accounts[rng.Intn(len(accounts))]
			receiver := accounts[rng.Intn(len(accounts))].addr
			mask := maskOf(log2NumLanes, sender.addr, receiver)
			if mask.Union(senderMask(sender.addr, log2NumLanes)).Overlaps(used) {
				continue
			}
			used = used.Union(mask.Union(senderMask(sender.addr, log2NumLanes)))
			*counter++
			tx := sender.sign(t, &types.Transaction{
				From:        sender.addr,
				ValidUntil:  1000,
				ChargeRate:  uint64(1 + rng.Intn(3)),
				ChargeLimit: 5,
				Mask:        mask,
				Transfers:   []types.Transfer{{To: receiver, Amount: uint64(rng.Intn(400))}},
				Counter:     *counter,
			})
			txs = append(txs, tx)
			slice.Transactions = append(slice.Transactions, types.NewTransactionLayout(tx, log2NumLanes))
		}
		blk.Slices = append(blk.Slices, slice)
	}
	return txs, blk
}

func TestRandomBlocksMatchSerialExecution(t *testing.T) {
	const log2NumLanes = 2
	rng := rand.New(mt19937.New())
	rng.Seed(20201204)

	cfg := testConfig()
	parallel := newTestUnit(t, log2NumLanes)
	serial := newTestUnit(t, log2NumLanes)
	m := newTestManager(t, cfg, parallel,
		DefaultExecutorFactory(parallel, chaincode.DefaultRegistry(), testEngine{}, cfg, log.NewNopLogger()))
	exec := newTestExecutor(serial)

	accounts := make([]testAccount, 12)
	total := uint64(0)
	for i := range accounts {
		accounts[i] = newAccount(t)
		balance := uint64(500 + rng.Intn(1000))
		total += balance
		setBalance(parallel, accounts[i].addr, balance)
		setBalance(serial, accounts[i].addr, balance)
	}
	miner := common.HexToAddress("0x3171e4")

	counter := uint64(0)
	for number := uint64(1); number <= 5; number++ {
		txs, blk := randomBlock(t, rng, number, accounts, log2NumLanes, &counter)
		for _, tx := range txs {
			submit(t, parallel, tx)
			submit(t, serial, tx)
		}

		require.Equal(t, SCHEDULED, m.Execute(blk))
		outcome := waitIdle(t, m)
		require.Equal(t, COMPLETED, outcome.Final)
		require.Zero(t, outcome.Counts[types.CATEGORY_BLOCK_INVALIDATING_ERROR])
		require.Zero(t, outcome.Counts[types.CATEGORY_INTERNAL_ERROR])

		fees := uint64(0)
		for _, slice := range blk.Slices {
			for _, layout := range slice.Transactions {
				res := exec.Execute(layout.Digest, number, 0, layout.Mask)
				parallelRes, ok := m.TransactionResult(layout.Digest)
				require.True(t, ok)
				res.Sequence, parallelRes.Sequence = 0, 0
				require.Equal(t, res, parallelRes)
				fees += res.Fee
			}
		}
		require.Equal(t, outcome.Fees, fees)
		require.NoError(t, exec.SettleFees(miner, number, fees, log2NumLanes, nil))
		require.Equal(t, serial.CurrentHash(), parallel.CurrentHash())

		sum := balanceOf(parallel, miner)
		for _, acc := range accounts {
			sum += balanceOf(parallel, acc.addr)
		}
		require.Equal(t, total, sum)
	}
}
