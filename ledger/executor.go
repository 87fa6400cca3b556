package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/atomic"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/config"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
	"github.com/smartbch/moeingledger/utils"
)

type TxExecutor interface {
	// Execute runs one transaction of a block against the shards of mask.
	// Its state changes are written back before it returns. Two transactions
	// sharing a shard get results whose Sequence follows their write-back order.
	Execute(digest common.Hash, blockIndex uint64, sliceIndex uint32, mask types.ShardMask) types.ContractExecutionResult
	// SettleFees credits the fees of a block to its miner and queues the
	// stake updates the block produced
	SettleFees(miner common.Address, blockIndex uint64, amount uint64, log2NumLanes uint32,
		stakeUpdates types.StakeUpdates) error
}

// Executor runs transactions one at a time. It is owned by one worker for
// the duration of a call, nothing in it is safe for concurrent use.
type Executor struct {
	unit      storage.Unit
	cache     *ChainCodeCache
	token     *chaincode.TokenContract
	fees      *FeeManager
	validator *TransactionValidator
	stakes    *StakeManager
	// stamps write-backs, shared by the executors of one manager
	seq    *atomic.Uint64
	logger log.Logger
}

var _ TxExecutor = (*Executor)(nil)

func NewExecutor(unit storage.Unit, registry *chaincode.Registry, engine chaincode.Engine,
	cfg *config.Config, logger log.Logger) *Executor {

	logger = logger.With("module", "executor")
	token := chaincode.NewTokenContract()
	return &Executor{
		unit: unit,
		cache: NewChainCodeCache(registry, engine, cfg.CacheSize,
			cfg.CacheLifetime.Duration, cfg.CacheMaintenanceInterval),
		token:     token,
		fees:      NewFeeManager(token, logger),
		validator: NewTransactionValidator(token),
		stakes:    NewStakeManager(),
		seq:       atomic.NewUint64(0),
		logger:    logger,
	}
}

// senderMask covers the balance and the deed of the sender
func senderMask(from common.Address, log2NumLanes uint32) types.ShardMask {
	return types.NewShardMaskFromLanes(log2NumLanes,
		types.TokenResource(from).Lane(log2NumLanes),
		types.DeedResource(from).Lane(log2NumLanes))
}

func (e *Executor) Execute(digest common.Hash, blockIndex uint64, sliceIndex uint32,
	mask types.ShardMask) (result types.ContractExecutionResult) {

	result.Status = types.NOT_RUN
	tx, err := e.unit.GetTransaction(digest)
	if err != nil {
		e.logger.Debug("Transaction lookup failed", "digest", digest.Hex(), "err", err)
		result.Status = types.TX_LOOKUP_FAILURE
		return
	}
	log2NumLanes := e.unit.Log2NumLanes()
	if mask.Size() != uint32(1)<<log2NumLanes {
		e.logger.Error("Shard mask does not match the storage", "digest", digest.Hex(),
			"size", mask.Size(), "log2NumLanes", log2NumLanes)
		result.Status = types.INTERNAL_ERROR
		return
	}

	fromMask := senderMask(tx.From, log2NumLanes)
	guard, err := storage.NewShardGuard(e.unit, mask.Union(fromMask).Shards())
	if err != nil {
		e.logger.Error("Unable to lock shards", "digest", digest.Hex(), "err", err)
		result.Status = types.INTERNAL_ERROR
		return
	}
	defer guard.Release()

	// the fee debit is always written back, the rest only on success
	feeStore := storage.NewCachedStorageAdapter(e.unit)
	txStore := storage.NewCachedStorageAdapter(feeStore)

	result.Status = e.validate(tx, blockIndex, feeStore, fromMask)
	if result.Status == types.SUCCESS {
		e.execute(tx, blockIndex, mask, txStore, &result)
	}
	if result.Status == types.SUCCESS {
		txStore.Flush()
	} else {
		txStore.Clear()
		result.StakeUpdates = nil
	}

	e.fees.Execute(tx, &result, blockIndex, log2NumLanes, feeStore)
	feeStore.Flush()
	// taken while the guard is held
	result.Sequence = e.seq.Inc()

	if result.Status != types.SUCCESS {
		e.logger.Debug("Transaction failed", "digest", digest.Hex(), "block", blockIndex,
			"slice", sliceIndex, "status", result.Status.String())
	}
	return
}

func (e *Executor) validate(tx *types.Transaction, blockIndex uint64, store storage.KVStore,
	mask types.ShardMask) types.ContractExecutionStatus {

	ctx := &chaincode.Context{
		TokenContract: e.token,
		State:         storage.NewStateSentinelAdapter(store, types.TokenContractName, mask),
		BlockIndex:    blockIndex,
	}
	attacher := chaincode.NewContextAttacher(e.token, ctx)
	defer attacher.Detach()
	return e.validator.Validate(tx, blockIndex)
}

// execute runs the contract and then the transfers of tx. Everything goes to
// store and may only touch the shards of mask.
func (e *Executor) execute(tx *types.Transaction, blockIndex uint64, mask types.ShardMask,
	store storage.KVStore, result *types.ContractExecutionResult) {

	tokenView := storage.NewStateSentinelAdapter(store, types.TokenContractName, mask)
	tokenCtx := &chaincode.Context{
		TokenContract: e.token,
		State:         tokenView,
		BlockIndex:    blockIndex,
	}
	attacher := chaincode.NewContextAttacher(e.token, tokenCtx)
	defer attacher.Detach()

	e.runContract(tx, blockIndex, mask, store, tokenView, result)
	if result.Status != types.SUCCESS {
		return
	}
	e.processTransfers(tx, result)
}

func (e *Executor) runContract(tx *types.Transaction, blockIndex uint64, mask types.ShardMask,
	store storage.KVStore, tokenView *storage.StateSentinelAdapter, result *types.ContractExecutionResult) {

	switch tx.ContractMode {
	case types.NOT_PRESENT:
		return
	case types.PRESENT, types.CHAIN_CODE:
	default:
		result.Status = types.CONTRACT_LOOKUP_FAILURE
		return
	}

	id, err := chaincode.IdentifierFromTransaction(tx)
	if err != nil {
		result.Status = types.CONTRACT_NAME_PARSE_FAILURE
		return
	}
	contract := e.cache.Lookup(id, store)
	if contract == nil {
		result.Status = types.CONTRACT_LOOKUP_FAILURE
		return
	}

	view := storage.NewStateSentinelAdapter(store, id.Scope(), mask)
	ctx := &chaincode.Context{
		TokenContract: e.token,
		Identifier:    id,
		State:         view,
		BlockIndex:    blockIndex,
	}
	attacher := chaincode.NewContextAttacher(contract, ctx)
	defer attacher.Detach()

	res, ok := e.dispatch(contract, tx)
	if !ok {
		result.Status = types.CONTRACT_EXECUTION_FAILURE
		return
	}
	switch res.Status {
	case chaincode.OK:
		result.Status = types.SUCCESS
	case chaincode.NOT_FOUND:
		result.Status = types.ACTION_LOOKUP_FAILURE
		return
	default:
		result.Status = types.CONTRACT_EXECUTION_FAILURE
		return
	}
	result.ReturnValue = res.ReturnValue

	views := []writeCounter{view}
	if id.Scope() != types.TokenContractName {
		views = append(views, tokenView)
	}
	chargeables := []types.Chargeable{contract, NewStorageFee(views...)}
	if !e.fees.CalculateChargeAndValidate(tx, mask, chargeables, result) {
		return
	}
	result.StakeUpdates = append(result.StakeUpdates, ctx.StakeUpdates...)
}

// dispatch reports false when the contract panicked
func (e *Executor) dispatch(contract chaincode.Contract, tx *types.Transaction) (res chaincode.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Contract panicked", "digest", tx.Digest().Hex(), "action", tx.Action, "panic", r)
			ok = false
		}
	}()
	return contract.DispatchTransaction(tx), true
}

func (e *Executor) processTransfers(tx *types.Transaction, result *types.ContractExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Transfer panicked", "digest", tx.Digest().Hex(), "panic", r)
			result.Status = types.CONTRACT_EXECUTION_FAILURE
		}
	}()
	for _, t := range tx.Transfers {
		charge, ok := utils.SafeAdd(result.Charge, types.TransferCharge)
		if !ok || charge > tx.ChargeLimit {
			result.Status = types.INSUFFICIENT_CHARGE
			return
		}
		result.Charge = charge
		if !e.token.TransferTokens(tx.From, t.To, t.Amount) {
			result.Status = types.TRANSFER_FAILURE
			return
		}
	}
}

func (e *Executor) SettleFees(miner common.Address, blockIndex uint64, amount uint64, log2NumLanes uint32,
	stakeUpdates types.StakeUpdates) error {

	lanes := []uint32{
		types.TokenResource(miner).Lane(log2NumLanes),
		types.StakeQueueResource().Lane(log2NumLanes),
	}
	guard, err := storage.NewShardGuard(e.unit, lanes)
	if err != nil {
		return err
	}
	defer guard.Release()

	store := storage.NewCachedStorageAdapter(e.unit)
	if err := e.fees.SettleFees(miner, amount, blockIndex, log2NumLanes, store); err != nil {
		store.Clear()
		return err
	}
	if err := e.stakes.Load(store); err != nil {
		store.Clear()
		return err
	}
	queue := e.stakes.UpdateQueue()
	for _, u := range stakeUpdates {
		queue.AddStakeUpdate(u.BlockIndex, u.From, u.Amount)
	}
	e.stakes.UpdateCurrentBlock(blockIndex)
	if err := e.stakes.Save(store); err != nil {
		store.Clear()
		return err
	}
	store.Flush()
	e.logger.Debug("Settled fees", "block", blockIndex, "miner", miner.Hex(), "amount", amount,
		"stakeUpdates", len(stakeUpdates))
	return nil
}
