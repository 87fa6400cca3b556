package chaincode

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
	"github.com/smartbch/moeingledger/utils"
)

// stake changes take effect this many blocks after the block of the action
const StakeActivationDelay uint64 = 1

const actionCharge uint64 = 1

type amountArgs struct {
	Amount uint64 `json:"amount"`
}

type transferArgs struct {
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

type addressArgs struct {
	Address common.Address `json:"address"`
}

type deedArgs struct {
	Signees    map[common.Address]uint64 `json:"signees"`
	Thresholds map[string]uint64         `json:"thresholds"`
}

// TokenContract keeps the balance and stake of every address together with
// its optional deed. All state goes through the attached context's State,
// which must be scoped to types.TokenContractName.
type TokenContract struct {
	baseContract
}

var _ Contract = (*TokenContract)(nil)

func NewTokenContract() *TokenContract {
	c := &TokenContract{baseContract: newBaseContract()}
	c.onAction("transfer", c.transfer)
	c.onAction(types.WealthAction, c.createWealth)
	c.onAction("deed", c.deed)
	c.onAction("addStake", c.addStake)
	c.onAction("deStake", c.deStake)
	c.onQuery("balance", c.queryBalance)
	c.onQuery("stake", c.queryStake)
	return c
}

func (c *TokenContract) loadAccount(addr common.Address) (*types.AccountInfo, bool) {
	v, status := c.ctx.State.Get(types.AccountKey(addr))
	switch status {
	case storage.OK:
		// the stored record is not shared with the store
		return types.NewAccountInfo(append([]byte{}, v...)), true
	case storage.ERROR:
		return types.ZeroAccountInfo(), true
	}
	return nil, false
}

func (c *TokenContract) storeAccount(addr common.Address, info *types.AccountInfo) bool {
	return c.ctx.State.Set(types.AccountKey(addr), info.Bytes()) == storage.OK
}

// GetBalance reads zero for unknown or inaccessible accounts
func (c *TokenContract) GetBalance(addr common.Address) uint64 {
	info, ok := c.loadAccount(addr)
	if !ok {
		return 0
	}
	return info.Balance()
}

func (c *TokenContract) GetStake(addr common.Address) uint64 {
	info, ok := c.loadAccount(addr)
	if !ok {
		return 0
	}
	return info.Stake()
}

// AddTokens credits amount to addr. It fails if the new balance would not
// fit in 64 bits or the account is outside the accessible shards.
func (c *TokenContract) AddTokens(addr common.Address, amount uint64) bool {
	info, ok := c.loadAccount(addr)
	if !ok {
		return false
	}
	balance, ok := utils.SafeAdd(info.Balance(), amount)
	if !ok {
		return false
	}
	info.UpdateBalance(balance)
	return c.storeAccount(addr, info)
}

func (c *TokenContract) SubtractTokens(addr common.Address, amount uint64) bool {
	info, ok := c.loadAccount(addr)
	if !ok {
		return false
	}
	balance, ok := utils.SafeSub(info.Balance(), amount)
	if !ok {
		return false
	}
	info.UpdateBalance(balance)
	return c.storeAccount(addr, info)
}

// TransferTokens moves amount from one account to another, nothing is
// written unless both sides can be updated
func (c *TokenContract) TransferTokens(from, to common.Address, amount uint64) bool {
	src, ok := c.loadAccount(from)
	if !ok {
		return false
	}
	if from == to {
		return src.Balance() >= amount
	}
	dst, ok := c.loadAccount(to)
	if !ok {
		return false
	}
	srcBalance, ok := utils.SafeSub(src.Balance(), amount)
	if !ok {
		return false
	}
	dstBalance, ok := utils.SafeAdd(dst.Balance(), amount)
	if !ok {
		return false
	}
	src.UpdateBalance(srcBalance)
	dst.UpdateBalance(dstBalance)
	return c.storeAccount(from, src) && c.storeAccount(to, dst)
}

// GetDeed returns nil when addr has no deed
func (c *TokenContract) GetDeed(addr common.Address) *types.Deed {
	v, status := c.ctx.State.Get(types.DeedKey(addr))
	if status != storage.OK {
		return nil
	}
	deed := types.NewDeed()
	if _, err := deed.UnmarshalMsg(v); err != nil {
		panic(err)
	}
	return deed
}

// SetDeed stores the deed of addr, a nil deed removes it
func (c *TokenContract) SetDeed(addr common.Address, deed *types.Deed) bool {
	if deed == nil {
		return c.ctx.State.Delete(types.DeedKey(addr)) == storage.OK
	}
	bz, err := deed.MarshalMsg(nil)
	if err != nil {
		return false
	}
	return c.ctx.State.Set(types.DeedKey(addr), bz) == storage.OK
}

func failed() Result {
	return Result{Status: FAILED}
}

func (c *TokenContract) transfer(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args transferArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	if !c.TransferTokens(tx.From, args.To, args.Amount) {
		return failed()
	}
	return Result{Status: OK}
}

func (c *TokenContract) createWealth(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args amountArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	if !c.AddTokens(tx.From, args.Amount) {
		return failed()
	}
	return Result{Status: OK}
}

func (c *TokenContract) deed(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args deedArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	if current := c.GetDeed(tx.From); current != nil && !current.Verify(tx, types.DeedAmend) {
		return failed()
	}
	if len(args.Signees) == 0 && len(args.Thresholds) == 0 {
		if !c.SetDeed(tx.From, nil) {
			return failed()
		}
		return Result{Status: OK}
	}
	deed := &types.Deed{Signees: args.Signees, Thresholds: args.Thresholds}
	if deed.Signees == nil {
		deed.Signees = make(map[common.Address]uint64)
	}
	if deed.Thresholds == nil {
		deed.Thresholds = make(map[string]uint64)
	}
	if !deed.IsSane() {
		return failed()
	}
	c.chargeUnits(uint64(len(deed.Signees)))
	if !c.SetDeed(tx.From, deed) {
		return failed()
	}
	return Result{Status: OK}
}

func (c *TokenContract) addStake(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args amountArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	info, ok := c.loadAccount(tx.From)
	if !ok {
		return failed()
	}
	balance, ok := utils.SafeSub(info.Balance(), args.Amount)
	if !ok {
		return failed()
	}
	stake, ok := utils.SafeAdd(info.Stake(), args.Amount)
	if !ok {
		return failed()
	}
	info.UpdateBalance(balance)
	info.UpdateStake(stake)
	if !c.storeAccount(tx.From, info) {
		return failed()
	}
	c.ctx.EmitStakeUpdate(tx.From, stake, c.ctx.BlockIndex+StakeActivationDelay)
	return Result{Status: OK}
}

func (c *TokenContract) deStake(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args amountArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	info, ok := c.loadAccount(tx.From)
	if !ok {
		return failed()
	}
	stake, ok := utils.SafeSub(info.Stake(), args.Amount)
	if !ok {
		return failed()
	}
	balance, ok := utils.SafeAdd(info.Balance(), args.Amount)
	if !ok {
		return failed()
	}
	info.UpdateBalance(balance)
	info.UpdateStake(stake)
	if !c.storeAccount(tx.From, info) {
		return failed()
	}
	c.ctx.EmitStakeUpdate(tx.From, stake, c.ctx.BlockIndex+StakeActivationDelay)
	return Result{Status: OK}
}

func (c *TokenContract) queryBalance(request []byte) (ResultStatus, []byte) {
	var args addressArgs
	if err := json.Unmarshal(request, &args); err != nil {
		return FAILED, nil
	}
	bz, _ := json.Marshal(map[string]uint64{"balance": c.GetBalance(args.Address)})
	return OK, bz
}

func (c *TokenContract) queryStake(request []byte) (ResultStatus, []byte) {
	var args addressArgs
	if err := json.Unmarshal(request, &args); err != nil {
		return FAILED, nil
	}
	bz, _ := json.Marshal(map[string]uint64{"stake": c.GetStake(args.Address)})
	return OK, bz
}
