package ledger

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
	"github.com/smartbch/moeingledger/utils"
)

// writeCounter is a state view which counts the bytes written through it
type writeCounter interface {
	BytesWritten() uint64
}

var _ writeCounter = (*storage.StateSentinelAdapter)(nil)

// StorageFee charges for the bytes written through a set of state views
type StorageFee struct {
	views []writeCounter
}

var _ types.Chargeable = (*StorageFee)(nil)

func NewStorageFee(views ...writeCounter) *StorageFee {
	return &StorageFee{views: views}
}

// CalculateFee saturates at MaxUint64, which no charge limit can cover
func (s *StorageFee) CalculateFee() uint64 {
	total := uint64(0)
	for _, v := range s.views {
		written := v.BytesWritten()
		if !utils.MulFitsUint64(written, types.StorageFeePerByte) {
			return math.MaxUint64
		}
		var ok bool
		if total, ok = utils.SafeAdd(total, written*types.StorageFeePerByte); !ok {
			return math.MaxUint64
		}
	}
	return total
}

// FeeManager turns charge into fees: it checks the charge of a transaction
// against its limit, debits the sender and credits the miner at the end of
// the block.
type FeeManager struct {
	token  *chaincode.TokenContract
	logger log.Logger
}

func NewFeeManager(token *chaincode.TokenContract, logger log.Logger) *FeeManager {
	return &FeeManager{token: token, logger: logger}
}

// CalculateChargeAndValidate adds the charge of chargeables, scaled by the
// number of shards in mask, and fails with INSUFFICIENT_CHARGE once the total
// goes beyond the charge limit. mask is the one the transaction executes
// with, which may be a remapping of tx.Mask.
func (f *FeeManager) CalculateChargeAndValidate(tx *types.Transaction, mask types.ShardMask,
	chargeables []types.Chargeable, result *types.ContractExecutionResult) bool {

	sum := uint64(0)
	ok := true
	for _, c := range chargeables {
		if sum, ok = utils.SafeAdd(sum, c.CalculateFee()); !ok {
			break
		}
	}
	scale := utils.MaxU64(uint64(mask.PopCount()), 1)
	if ok {
		ok = utils.MulFitsUint64(sum, scale)
	}
	if ok {
		result.Charge, ok = utils.SafeAdd(result.Charge, sum*scale)
	}
	if !ok {
		result.Charge = math.MaxUint64
	}
	if result.Charge > tx.ChargeLimit {
		result.Status = types.INSUFFICIENT_CHARGE
		return false
	}
	return true
}

func singleLaneMask(addr types.ResourceAddress, log2NumLanes uint32) types.ShardMask {
	return types.NewShardMaskFromLanes(log2NumLanes, addr.Lane(log2NumLanes))
}

// Execute debits the fee of a finished transaction from its sender. A
// successful transaction pays for the charge it used, any other pays for its
// whole limit. The fee never exceeds the balance of the sender.
func (f *FeeManager) Execute(tx *types.Transaction, result *types.ContractExecutionResult, blockIndex uint64,
	log2NumLanes uint32, store storage.KVStore) {

	mask := singleLaneMask(types.TokenResource(tx.From), log2NumLanes)
	ctx := &chaincode.Context{
		TokenContract: f.token,
		State:         storage.NewStateSentinelAdapter(store, types.TokenContractName, mask),
		BlockIndex:    blockIndex,
	}
	attacher := chaincode.NewContextAttacher(f.token, ctx)
	defer attacher.Detach()

	units := tx.ChargeLimit
	if result.Status == types.SUCCESS {
		units = result.Charge
	}
	balance := f.token.GetBalance(tx.From)
	fee := utils.CappedMul(units, tx.ChargeRate, balance)
	if !f.token.SubtractTokens(tx.From, fee) {
		f.logger.Error("Unable to deduct fee", "from", tx.From.Hex(), "fee", fee, "balance", balance)
		fee = 0
	}
	result.ChargeRate = tx.ChargeRate
	result.ChargeLimit = tx.ChargeLimit
	result.Fee = fee
}

// SettleFees credits the fees of a whole block to its miner
func (f *FeeManager) SettleFees(miner common.Address, amount uint64, blockIndex uint64,
	log2NumLanes uint32, store storage.KVStore) error {

	if amount == 0 {
		return nil
	}
	mask := singleLaneMask(types.TokenResource(miner), log2NumLanes)
	ctx := &chaincode.Context{
		TokenContract: f.token,
		State:         storage.NewStateSentinelAdapter(store, types.TokenContractName, mask),
		BlockIndex:    blockIndex,
	}
	attacher := chaincode.NewContextAttacher(f.token, ctx)
	defer attacher.Detach()

	if !f.token.AddTokens(miner, amount) {
		return errors.Wrapf(types.ErrBalanceOverflow, "credit %d to miner %s", amount, miner.Hex())
	}
	return nil
}
