package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	"go.uber.org/atomic"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/config"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
	"github.com/smartbch/moeingledger/utils"
)

type ScheduleStatus uint8

const (
	NOT_STARTED ScheduleStatus = iota
	ALREADY_RUNNING
	UNABLE_TO_PLAN
	SCHEDULED
)

func (s ScheduleStatus) String() string {
	switch s {
	case NOT_STARTED:
		return "not-started"
	case ALREADY_RUNNING:
		return "already-running"
	case UNABLE_TO_PLAN:
		return "unable-to-plan"
	case SCHEDULED:
		return "scheduled"
	}
	return "unknown"
}

type MonitorState int32

const (
	IDLE MonitorState = iota
	SCHEDULE_NEXT_SLICE
	RUNNING
	SETTLE_FEES
	BOOKMARKING_STATE
	STALLED
	FAILED
	COMPLETED
)

func (s MonitorState) String() string {
	switch s {
	case IDLE:
		return "idle"
	case SCHEDULE_NEXT_SLICE:
		return "schedule-next-slice"
	case RUNNING:
		return "running"
	case SETTLE_FEES:
		return "settle-fees"
	case BOOKMARKING_STATE:
		return "bookmarking-state"
	case STALLED:
		return "stalled"
	case FAILED:
		return "failed"
	case COMPLETED:
		return "completed"
	}
	return "unknown"
}

var (
	ErrAbortNotSupported    = errors.New("abort is not supported")
	ErrMonitorStartTimeout  = errors.New("monitor did not become ready")
	ErrFeeSettlementTimeout = errors.New("no idle executor to settle fees, fees of the block are dropped")
)

// BlockOutcome sums up the execution of one block. A FAILED block may have
// left state behind, callers revert to the hash they held before.
type BlockOutcome struct {
	Block      common.Hash
	BlockIndex uint64
	Final      MonitorState
	StateHash  common.Hash

	Counts       map[types.StatusCategory]int
	Fees         uint64
	StakeUpdates types.StakeUpdates
	Results      map[common.Hash]types.ContractExecutionResult
	SettleErr    error
}

func newBlockOutcome(block *types.Block) *BlockOutcome {
	return &BlockOutcome{
		Block:      block.Hash,
		BlockIndex: block.Number,
		Counts:     make(map[types.StatusCategory]int),
		Results:    make(map[common.Hash]types.ContractExecutionResult),
	}
}

type ExecutorFactory func() TxExecutor

func DefaultExecutorFactory(unit storage.Unit, registry *chaincode.Registry, engine chaincode.Engine,
	cfg *config.Config, logger log.Logger) ExecutorFactory {

	seq := atomic.NewUint64(0)
	return func() TxExecutor {
		e := NewExecutor(unit, registry, engine, cfg, logger)
		e.seq = seq
		return e
	}
}

// ExecutionManager runs blocks. A monitor goroutine walks each block through
// its slices, the items of a slice run in parallel on a worker pool with one
// executor per worker.
type ExecutionManager struct {
	service.BaseService

	cfg    *config.Config
	unit   storage.Unit
	logger log.Logger

	// idle holds the indexes of the executors no worker has checked out
	executors []TxExecutor
	idle      chan int
	pool      *workerpool.WorkerPool

	state       atomic.Int32
	ready       atomic.Bool
	wake        chan struct{}
	quit        chan struct{}
	monitorDone chan struct{}

	mtx         sync.Mutex
	block       *types.Block
	plan        ExecutionPlan
	nextSlice   int
	counter     *ItemCounter
	outcome     *BlockOutcome
	lastOutcome *BlockOutcome
	blockDone   chan struct{}

	lastProcessed common.Hash
	stateHashes   map[common.Hash]common.Hash
}

func NewExecutionManager(cfg *config.Config, unit storage.Unit, factory ExecutorFactory, logger log.Logger) *ExecutionManager {
	m := &ExecutionManager{
		cfg:         cfg,
		unit:        unit,
		logger:      logger.With("module", "ledger"),
		executors:   make([]TxExecutor, cfg.NumExecutors),
		idle:        make(chan int, cfg.NumExecutors),
		wake:        make(chan struct{}, 1),
		blockDone:   make(chan struct{}),
		stateHashes: make(map[common.Hash]common.Hash),
	}
	close(m.blockDone)
	for i := range m.executors {
		m.executors[i] = factory()
		m.idle <- i
	}
	m.BaseService = *service.NewBaseService(logger, "ExecutionManager", m)
	return m
}

func (m *ExecutionManager) OnStart() error {
	m.pool = workerpool.New(m.cfg.NumExecutors)
	m.quit = make(chan struct{})
	m.monitorDone = make(chan struct{})
	m.ready.Store(false)
	go m.monitor()

	for i := 0; i < m.cfg.StartRetries; i++ {
		if m.ready.Load() {
			return nil
		}
		time.Sleep(m.cfg.StartRetryInterval.Duration)
	}
	if m.ready.Load() {
		return nil
	}
	close(m.quit)
	<-m.monitorDone
	m.pool.Stop()
	return ErrMonitorStartTimeout
}

func (m *ExecutionManager) OnStop() {
	close(m.quit)
	<-m.monitorDone
	m.pool.StopWait()
}

func (m *ExecutionManager) Abort() error {
	return ErrAbortNotSupported
}

func (m *ExecutionManager) State() MonitorState {
	return MonitorState(m.state.Load())
}

func (m *ExecutionManager) setState(s MonitorState) {
	m.state.Store(int32(s))
}

func (m *ExecutionManager) LastProcessedBlock() common.Hash {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.lastProcessed
}

// SetLastProcessedBlock is used to resume after a restart
func (m *ExecutionManager) SetLastProcessedBlock(hash common.Hash) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.lastProcessed = hash
}

// LastOutcome is nil until the first block finished
func (m *ExecutionManager) LastOutcome() *BlockOutcome {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.lastOutcome
}

// TransactionResult looks the digest up in the last finished block
func (m *ExecutionManager) TransactionResult(digest common.Hash) (types.ContractExecutionResult, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.lastOutcome == nil {
		return types.ContractExecutionResult{}, false
	}
	res, ok := m.lastOutcome.Results[digest]
	return res, ok
}

// BlockStateHash returns the storage hash recorded after blockHash completed
func (m *ExecutionManager) BlockStateHash(blockHash common.Hash) (common.Hash, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	h, ok := m.stateHashes[blockHash]
	return h, ok
}

// WaitForIdle blocks until the scheduled block, if any, has finished
func (m *ExecutionManager) WaitForIdle(ctx context.Context) error {
	m.mtx.Lock()
	done := m.blockDone
	m.mtx.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *ExecutionManager) Execute(block *types.Block) ScheduleStatus {
	if !m.IsRunning() || !m.ready.Load() {
		return NOT_STARTED
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.State() != IDLE {
		return ALREADY_RUNNING
	}
	plan, err := m.makePlan(block)
	if err != nil {
		m.logger.Error("Unable to plan block", "block", block.Number, "hash", block.Hash.Hex(), "err", err)
		return UNABLE_TO_PLAN
	}
	m.block = block
	m.plan = plan
	m.nextSlice = 0
	m.outcome = newBlockOutcome(block)
	m.blockDone = make(chan struct{})
	m.setState(SCHEDULE_NEXT_SLICE)

	select {
	case m.wake <- struct{}{}:
	default:
	}
	m.logger.Debug("Scheduled block", "block", block.Number, "slices", len(plan), "txs", plan.NumItems())
	return SCHEDULED
}

// makePlan turns the block into execution items, every mask must match the
// lane count of the storage
func (m *ExecutionManager) makePlan(block *types.Block) (ExecutionPlan, error) {
	var result error
	log2NumLanes := m.unit.Log2NumLanes()
	if block.Log2NumLanes != log2NumLanes {
		result = multierror.Append(result, errors.Wrapf(types.ErrMaskSizeMismatch,
			"block uses 2^%d lanes, storage has 2^%d", block.Log2NumLanes, log2NumLanes))
	}
	lanes := uint32(1) << log2NumLanes
	plan := make(ExecutionPlan, len(block.Slices))
	for i, slice := range block.Slices {
		plan[i] = make([]*ExecutionItem, 0, len(slice.Transactions))
		for _, layout := range slice.Transactions {
			if layout.Mask.Size() != lanes {
				result = multierror.Append(result, errors.Wrapf(types.ErrMaskSizeMismatch,
					"tx %s in slice %d has %d lanes", layout.Digest.Hex(), i, layout.Mask.Size()))
				continue
			}
			plan[i] = append(plan[i], NewExecutionItem(layout.Digest, block.Number, uint32(i), layout.Mask))
		}
	}
	if result != nil {
		return nil, result
	}
	return plan, nil
}

func (m *ExecutionManager) monitor() {
	defer close(m.monitorDone)
	m.ready.Store(true)
	for {
		select {
		case <-m.quit:
			return
		default:
		}
		switch m.State() {
		case IDLE:
			select {
			case <-m.quit:
				return
			case <-m.wake:
			}
		case SCHEDULE_NEXT_SLICE:
			m.scheduleNextSlice()
		case RUNNING:
			m.waitForSlice()
		case SETTLE_FEES:
			m.settleFees()
		case BOOKMARKING_STATE:
			m.bookmarkState()
		case STALLED, FAILED, COMPLETED:
			m.finishBlock()
		}
	}
}

func (m *ExecutionManager) scheduleNextSlice() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.nextSlice >= len(m.plan) {
		m.setState(SETTLE_FEES)
		return
	}
	items := m.plan[m.nextSlice]
	m.nextSlice++
	counter := NewItemCounter(len(items))
	m.counter = counter
	for _, item := range items {
		item := item
		m.pool.Submit(func() {
			counter.Started()
			defer counter.Completed()
			m.runItem(item)
		})
	}
	m.setState(RUNNING)
}

// runItem checks out an executor for the item. Every worker owns at most one
// executor, so one is always free here.
func (m *ExecutionManager) runItem(item *ExecutionItem) {
	var slot int
	select {
	case slot = <-m.idle:
	default:
		panic("no idle executor for a dispatched item")
	}
	defer func() { m.idle <- slot }()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Executor panicked", "digest", item.Digest.Hex(), "panic", r)
			item.Result = types.ContractExecutionResult{Status: types.INTERNAL_ERROR}
		}
	}()
	item.Result = m.executors[slot].Execute(item.Digest, item.BlockIndex, item.SliceIndex, item.Mask)
}

// waitForSlice never gives up on the items of a slice, a slow slice is only
// reported
func (m *ExecutionManager) waitForSlice() {
	m.mtx.Lock()
	counter := m.counter
	sliceIndex := m.nextSlice - 1
	items := m.plan[sliceIndex]
	blockIndex := m.block.Number
	m.mtx.Unlock()

	start := time.Now()
	for !counter.Wait(m.cfg.SliceWaitTimeout.Duration) {
		slowSlices.Inc()
		m.logger.Info("Slice is taking long", "block", blockIndex, "slice", sliceIndex,
			"active", counter.Active(), "remaining", counter.Remaining(), "elapsed", time.Since(start))
		select {
		case <-m.quit:
			return
		default:
		}
	}
	sliceDuration.Observe(time.Since(start).Seconds())

	m.mtx.Lock()
	defer m.mtx.Unlock()
	var invalidating, internal int
	succeeded := make([]*ExecutionItem, 0, len(items))
	for _, item := range items {
		category := item.Result.Status.Category()
		m.outcome.Counts[category]++
		m.outcome.Results[item.Digest] = item.Result
		executedTxs.WithLabelValues(category.String()).Inc()
		switch category {
		case types.CATEGORY_BLOCK_INVALIDATING_ERROR:
			invalidating++
		case types.CATEGORY_INTERNAL_ERROR:
			internal++
		}
		fees, ok := utils.SafeAdd(m.outcome.Fees, item.Result.Fee)
		if !ok {
			m.logger.Error("Block fees overflow", "block", blockIndex, "digest", item.Digest.Hex())
			internal++
			continue
		}
		m.outcome.Fees = fees
		if item.Result.Status == types.SUCCESS {
			succeeded = append(succeeded, item)
		}
	}
	// stake updates carry absolute amounts, the one written back last wins
	sort.SliceStable(succeeded, func(i, j int) bool {
		return succeeded[i].Result.Sequence < succeeded[j].Result.Sequence
	})
	for _, item := range succeeded {
		m.outcome.StakeUpdates = append(m.outcome.StakeUpdates, item.Result.StakeUpdates...)
	}
	switch {
	case invalidating > 0:
		m.logger.Error("Block contains invalid transactions", "block", blockIndex, "slice", sliceIndex,
			"count", invalidating)
		m.setState(FAILED)
	case internal > 0:
		m.logger.Error("Block stalled on internal errors", "block", blockIndex, "slice", sliceIndex,
			"count", internal)
		m.setState(STALLED)
	case m.nextSlice < len(m.plan):
		m.setState(SCHEDULE_NEXT_SLICE)
	default:
		m.setState(SETTLE_FEES)
	}
}

// settleFees hands the fees of the block to whichever executor frees up
// first. Without one the fees are dropped.
func (m *ExecutionManager) settleFees() {
	m.mtx.Lock()
	block := m.block
	outcome := m.outcome
	m.mtx.Unlock()

	timer := time.NewTimer(m.cfg.SettleFeesTimeout.Duration)
	defer timer.Stop()
	select {
	case slot := <-m.idle:
		err := m.executors[slot].SettleFees(block.Miner, block.Number, outcome.Fees, block.Log2NumLanes,
			outcome.StakeUpdates)
		m.idle <- slot
		if err != nil {
			m.logger.Error("Unable to settle fees", "block", block.Number, "err", err)
			outcome.SettleErr = err
		}
	case <-timer.C:
		feeSettlementsDropped.Inc()
		m.logger.Error("Fee settlement timed out", "block", block.Number, "fees", outcome.Fees,
			"err", ErrFeeSettlementTimeout)
		outcome.SettleErr = ErrFeeSettlementTimeout
	}
	m.setState(BOOKMARKING_STATE)
}

func (m *ExecutionManager) bookmarkState() {
	hash := m.unit.CurrentHash()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.stateHashes[m.block.Hash] = hash
	m.lastProcessed = m.block.Hash
	m.outcome.StateHash = hash
	m.setState(COMPLETED)
}

func (m *ExecutionManager) finishBlock() {
	state := m.State()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.outcome.Final = state
	m.lastOutcome = m.outcome
	executedBlocks.WithLabelValues(state.String()).Inc()
	m.logger.Info("Finished block", "block", m.block.Number, "state", state.String(),
		"fees", m.outcome.Fees, "txs", len(m.outcome.Results))

	m.block = nil
	m.plan = nil
	m.counter = nil
	m.outcome = nil
	m.setState(IDLE)
	close(m.blockDone)
}
