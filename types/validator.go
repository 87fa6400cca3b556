package types

//go:generate msgp -io=false -tests=false

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Validator is one entry of the active stake set
type Validator struct {
	Address common.Address `msg:"addr"`
	Stake   uint64         `msg:"stake"`
}

// String returns a human readable string representation of a validator.
func (v Validator) String() string {
	return fmt.Sprintf(`Validator
  Address: %s
  Stake:   %d`, v.Address.Hex(), v.Stake)
}

// Validators is a collection of Validator
type Validators []Validator

func (v Validators) String() (out string) {
	for _, val := range v {
		out += val.String() + "\n"
	}
	return strings.TrimSpace(out)
}

func (v Validators) TotalStake() uint64 {
	total := uint64(0)
	for _, val := range v {
		total += val.Stake
	}
	return total
}

// Sort Validators sorts validator array in ascending address order
func (v Validators) Sort() {
	sort.Sort(v)
}

// Implements sort interface
func (v Validators) Len() int {
	return len(v)
}

// Implements sort interface
func (v Validators) Less(i, j int) bool {
	return bytes.Compare(v[i].Address[:], v[j].Address[:]) == -1
}

// Implements sort interface
func (v Validators) Swap(i, j int) {
	it := v[i]
	v[i] = v[j]
	v[j] = it
}
