package ledger

import (
	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/types"
	"github.com/smartbch/moeingledger/utils"
)

// TransactionValidator decides whether a transaction may run in a block.
// The token contract must be attached to a view which can read the balance
// and the deed of the sender.
type TransactionValidator struct {
	token *chaincode.TokenContract
}

func NewTransactionValidator(token *chaincode.TokenContract) *TransactionValidator {
	return &TransactionValidator{token: token}
}

func (v *TransactionValidator) Validate(tx *types.Transaction, blockIndex uint64) types.ContractExecutionStatus {
	if blockIndex >= tx.ValidUntil || (tx.ValidFrom != 0 && blockIndex < tx.ValidFrom) {
		return types.TX_NOT_VALID_FOR_BLOCK
	}

	// TODO: drop once balances can be seeded from a genesis file
	if tx.IsWealthCreation() {
		return types.SUCCESS
	}

	if tx.Verify() != nil {
		return types.TX_PERMISSION_DENIED
	}
	if deed := v.token.GetDeed(tx.From); deed != nil {
		if !deed.Verify(tx, types.DeedTransfer) {
			return types.TX_PERMISSION_DENIED
		}
		if tx.TargetsContract() && !deed.Verify(tx, types.DeedExecute) {
			return types.TX_PERMISSION_DENIED
		}
	} else if len(tx.Signatories) != 1 || !tx.IsSignedBy(tx.From) {
		return types.TX_PERMISSION_DENIED
	}

	if tx.ChargeRate == 0 || tx.ChargeLimit == 0 || tx.ChargeLimit < tx.MinimumCharge() {
		return types.TX_NOT_ENOUGH_CHARGE
	}
	if tx.ChargeLimit > types.MaximumChargeLimit {
		return types.TX_CHARGE_LIMIT_TOO_HIGH
	}

	maxFee := utils.MulU64(tx.ChargeRate, tx.ChargeLimit)
	if !maxFee.IsUint64() || maxFee.Uint64() > v.token.GetBalance(tx.From) {
		return types.INSUFFICIENT_AVAILABLE_FUNDS
	}
	return types.SUCCESS
}
