package chaincode

import (
	"github.com/smartbch/moeingledger/types"
)

// ResultStatus is the outcome a contract reports for an action or a query
type ResultStatus uint8

const (
	OK ResultStatus = iota
	FAILED
	NOT_FOUND
)

func (s ResultStatus) String() string {
	switch s {
	case OK:
		return "ok"
	case FAILED:
		return "failed"
	case NOT_FOUND:
		return "not-found"
	}
	return "unknown"
}

type Result struct {
	Status      ResultStatus
	ReturnValue int64
}

// Contract is the capability shared by built-in chain code and smart
// contracts. A contract must be attached to a Context before dispatching,
// the charge it reports covers the actions dispatched since the attach.
type Contract interface {
	types.Chargeable
	DispatchTransaction(tx *types.Transaction) Result
	DispatchQuery(name string, request []byte) (ResultStatus, []byte)
	Attach(ctx *Context)
	Detach()
}

type ActionHandler func(tx *types.Transaction) Result

type QueryHandler func(request []byte) (ResultStatus, []byte)

// baseContract keeps the action and query tables and the charge counter
type baseContract struct {
	ctx     *Context
	charge  uint64
	actions map[string]ActionHandler
	queries map[string]QueryHandler
}

func newBaseContract() baseContract {
	return baseContract{
		actions: make(map[string]ActionHandler),
		queries: make(map[string]QueryHandler),
	}
}

func (c *baseContract) onAction(name string, handler ActionHandler) {
	c.actions[name] = handler
}

func (c *baseContract) onQuery(name string, handler QueryHandler) {
	c.queries[name] = handler
}

func (c *baseContract) Attach(ctx *Context) {
	c.ctx = ctx
	c.charge = 0
}

func (c *baseContract) Detach() {
	c.ctx = nil
}

func (c *baseContract) Context() *Context {
	return c.ctx
}

func (c *baseContract) IsAttached() bool {
	return c.ctx != nil
}

func (c *baseContract) CalculateFee() uint64 {
	return c.charge
}

func (c *baseContract) chargeUnits(units uint64) {
	c.charge += units
}

func (c *baseContract) DispatchTransaction(tx *types.Transaction) Result {
	handler, ok := c.actions[tx.Action]
	if !ok {
		return Result{Status: NOT_FOUND}
	}
	if c.ctx == nil {
		panic("contract dispatched without a context")
	}
	return handler(tx)
}

func (c *baseContract) DispatchQuery(name string, request []byte) (ResultStatus, []byte) {
	handler, ok := c.queries[name]
	if !ok {
		return NOT_FOUND, nil
	}
	if c.ctx == nil {
		panic("contract queried without a context")
	}
	return handler(request)
}

func (c *baseContract) HasAction(name string) bool {
	_, ok := c.actions[name]
	return ok
}
