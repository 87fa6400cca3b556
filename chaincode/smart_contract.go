package chaincode

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

// Engine runs smart contract code. The virtual machine itself lives outside
// this module, it only has to follow the contract calling convention.
type Engine interface {
	// Run executes action of code against state and reports the charge it used
	Run(code []byte, action string, input []byte, env *Environment) (status ResultStatus, retval int64, charge uint64)
	// Query runs a read only entry point of code
	Query(code []byte, name string, request []byte, env *Environment) (ResultStatus, []byte)
}

// Environment is the view of the chain an Engine gets
type Environment struct {
	Sender     common.Address
	Address    common.Address
	BlockIndex uint64
	State      storage.StateView
	Token      *TokenContract
}

// SmartContract is user code stored in the state and run by an Engine
type SmartContract struct {
	baseContract
	address common.Address
	code    *types.CodeInfo
	engine  Engine
}

var _ Contract = (*SmartContract)(nil)

// LoadSmartContract returns nil if no code is stored at addr
func LoadSmartContract(store storage.KVStore, addr common.Address, engine Engine) *SmartContract {
	if engine == nil {
		return nil
	}
	bz := store.Get(types.ContractCodeResource(addr))
	if len(bz) <= 33 {
		return nil
	}
	return &SmartContract{
		baseContract: newBaseContract(),
		address:      addr,
		code:         types.NewCodeInfo(append([]byte{}, bz...)),
		engine:       engine,
	}
}

// DeployCode stores code so that it can later be loaded at addr
func DeployCode(store storage.KVStore, addr common.Address, code []byte) {
	store.Set(types.ContractCodeResource(addr), types.CodeInfoFromCode(code).Bytes())
}

func (c *SmartContract) Address() common.Address {
	return c.address
}

func (c *SmartContract) CodeHash() common.Hash {
	return common.BytesToHash(c.code.CodeHashSlice())
}

func (c *SmartContract) env(sender common.Address) *Environment {
	return &Environment{
		Sender:     sender,
		Address:    c.address,
		BlockIndex: c.ctx.BlockIndex,
		State:      c.ctx.State,
		Token:      c.ctx.TokenContract,
	}
}

func (c *SmartContract) DispatchTransaction(tx *types.Transaction) Result {
	if c.ctx == nil {
		panic("contract dispatched without a context")
	}
	status, retval, charge := c.engine.Run(c.code.CodeSlice(), tx.Action, tx.Data, c.env(tx.From))
	c.chargeUnits(charge)
	return Result{Status: status, ReturnValue: retval}
}

func (c *SmartContract) DispatchQuery(name string, request []byte) (ResultStatus, []byte) {
	if c.ctx == nil {
		panic("contract queried without a context")
	}
	return c.engine.Query(c.code.CodeSlice(), name, request, c.env(common.Address{}))
}
