package chaincode

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

// Context is what a contract can reach while one transaction runs
type Context struct {
	TokenContract *TokenContract
	Identifier    Identifier
	State         storage.StateView
	BlockIndex    uint64

	StakeUpdates types.StakeUpdates
}

func (ctx *Context) EmitStakeUpdate(from common.Address, amount uint64, blockIndex uint64) {
	ctx.StakeUpdates = append(ctx.StakeUpdates, types.StakeUpdate{
		BlockIndex: blockIndex,
		From:       from,
		Amount:     amount,
	})
}

// ContextAttacher attaches a contract for the life of a scope:
//
//	attacher := NewContextAttacher(contract, ctx)
//	defer attacher.Detach()
type ContextAttacher struct {
	contract Contract
}

func NewContextAttacher(contract Contract, ctx *Context) *ContextAttacher {
	contract.Attach(ctx)
	return &ContextAttacher{contract: contract}
}

func (a *ContextAttacher) Detach() {
	if a.contract != nil {
		a.contract.Detach()
		a.contract = nil
	}
}
