package types

//go:generate msgp -io=false -tests=false

import (
	"github.com/ethereum/go-ethereum/common"
)

// StakeUpdate asks the stake manager to set the stake of From to Amount
// once the chain reaches BlockIndex.
type StakeUpdate struct {
	BlockIndex uint64         `msg:"block"`
	From       common.Address `msg:"from"`
	Amount     uint64         `msg:"amount"`
}

type StakeUpdates []StakeUpdate

// ContractExecutionResult is what callers see for each executed
// transaction. Its encoded form is read by status reporting services.
type ContractExecutionResult struct {
	Status       ContractExecutionStatus `msg:"status"`
	Charge       uint64                  `msg:"charge"`
	ChargeRate   uint64                  `msg:"chargerate"`
	ChargeLimit  uint64                  `msg:"chargelimit"`
	Fee          uint64                  `msg:"fee"`
	ReturnValue  int64                   `msg:"retval"`
	StakeUpdates StakeUpdates            `msg:"stakeupdates"`

	// order in which the write-back happened among the executors sharing a
	// sequence, local to this process
	Sequence uint64 `msg:"-"`
}

func (r *ContractExecutionResult) IsSuccess() bool {
	return r.Status == SUCCESS
}
