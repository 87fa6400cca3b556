package types

//go:generate msgp -io=false -tests=false

import (
	"github.com/ethereum/go-ethereum/common"
)

// Operations a deed can gate
const (
	DeedTransfer = "transfer"
	DeedExecute  = "execute"
	DeedAmend    = "amend"
)

// Deed is a multi-signatory authorization policy attached to an address.
// Each signee has a voting weight, an operation is authorized when the
// weights of the signees who signed the transaction reach its threshold.
type Deed struct {
	Signees    map[common.Address]uint64 `msg:"signees"`
	Thresholds map[string]uint64         `msg:"thresholds"`
}

func NewDeed() *Deed {
	return &Deed{
		Signees:    make(map[common.Address]uint64),
		Thresholds: make(map[string]uint64),
	}
}

func (d *Deed) TotalWeight() uint64 {
	total := uint64(0)
	for _, w := range d.Signees {
		total += w
	}
	return total
}

// IsSane reports whether every threshold is non-zero and reachable
func (d *Deed) IsSane() bool {
	if len(d.Signees) == 0 || len(d.Thresholds) == 0 {
		return false
	}
	total := d.TotalWeight()
	for _, threshold := range d.Thresholds {
		if threshold == 0 || threshold > total {
			return false
		}
	}
	return true
}

// Verify checks the signatories of tx carry enough weight for operation
func (d *Deed) Verify(tx *Transaction, operation string) bool {
	threshold, ok := d.Thresholds[operation]
	if !ok {
		return false
	}
	seen := make(map[common.Address]struct{}, len(tx.Signatories))
	weight := uint64(0)
	for _, s := range tx.Signatories {
		addr := s.Address()
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		weight += d.Signees[addr]
	}
	return weight >= threshold
}
