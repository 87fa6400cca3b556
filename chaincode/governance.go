package chaincode

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

type Proposal struct {
	ID          string                  `json:"id"`
	Proposer    common.Address          `json:"proposer"`
	Description string                  `json:"description"`
	VotingEnd   uint64                  `json:"votingEnd"`
	Votes       map[common.Address]bool `json:"votes"`
}

// Tally counts the voters for and against the proposal
func (p *Proposal) Tally() (accept, reject int) {
	for _, v := range p.Votes {
		if v {
			accept++
		} else {
			reject++
		}
	}
	return
}

type voteArgs struct {
	ID     string `json:"id"`
	Accept bool   `json:"accept"`
}

// GovernanceContract records proposals and the votes cast on them until
// their voting period ends
type GovernanceContract struct {
	baseContract
}

var _ Contract = (*GovernanceContract)(nil)

func NewGovernanceContract() *GovernanceContract {
	c := &GovernanceContract{baseContract: newBaseContract()}
	c.onAction("propose", c.propose)
	c.onAction("vote", c.vote)
	c.onQuery("proposal", c.queryProposal)
	return c
}

func proposalKey(id string) string {
	return "proposal." + id
}

func (c *GovernanceContract) loadProposal(id string) *Proposal {
	v, status := c.ctx.State.Get(proposalKey(id))
	if status != storage.OK {
		return nil
	}
	var p Proposal
	if err := json.Unmarshal(v, &p); err != nil {
		return nil
	}
	return &p
}

func (c *GovernanceContract) storeProposal(p *Proposal) bool {
	bz, err := json.Marshal(p)
	if err != nil {
		return false
	}
	return c.ctx.State.Set(proposalKey(p.ID), bz) == storage.OK
}

func (c *GovernanceContract) propose(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var p Proposal
	if err := json.Unmarshal(tx.Data, &p); err != nil || p.ID == "" {
		return failed()
	}
	if p.VotingEnd <= c.ctx.BlockIndex {
		return failed()
	}
	if _, status := c.ctx.State.Get(proposalKey(p.ID)); status != storage.ERROR {
		// already exists or not accessible
		return failed()
	}
	p.Proposer = tx.From
	p.Votes = make(map[common.Address]bool)
	if !c.storeProposal(&p) {
		return failed()
	}
	return Result{Status: OK}
}

func (c *GovernanceContract) vote(tx *types.Transaction) Result {
	c.chargeUnits(actionCharge)
	var args voteArgs
	if err := json.Unmarshal(tx.Data, &args); err != nil {
		return failed()
	}
	p := c.loadProposal(args.ID)
	if p == nil || c.ctx.BlockIndex >= p.VotingEnd {
		return failed()
	}
	if p.Votes == nil {
		p.Votes = make(map[common.Address]bool)
	}
	p.Votes[tx.From] = args.Accept
	if !c.storeProposal(p) {
		return failed()
	}
	accept, _ := p.Tally()
	return Result{Status: OK, ReturnValue: int64(accept)}
}

func (c *GovernanceContract) queryProposal(request []byte) (ResultStatus, []byte) {
	var args voteArgs
	if err := json.Unmarshal(request, &args); err != nil {
		return FAILED, nil
	}
	p := c.loadProposal(args.ID)
	if p == nil {
		return NOT_FOUND, nil
	}
	bz, err := json.Marshal(p)
	if err != nil {
		return FAILED, nil
	}
	return OK, bz
}
