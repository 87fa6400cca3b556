package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// TransactionLayout is the summary of a transaction the block carries:
// enough to plan execution without loading the transaction itself.
type TransactionLayout struct {
	Digest      common.Hash
	Mask        ShardMask
	ChargeRate  uint64
	ChargeLimit uint64
	ValidFrom   uint64
	ValidUntil  uint64
}

func NewTransactionLayout(tx *Transaction, log2NumLanes uint32) TransactionLayout {
	lanes := uint32(1) << log2NumLanes
	mask := tx.Mask
	if mask.Size() != lanes {
		mask = mask.Remap(lanes)
	}
	return TransactionLayout{
		Digest:      tx.Digest(),
		Mask:        mask,
		ChargeRate:  tx.ChargeRate,
		ChargeLimit: tx.ChargeLimit,
		ValidFrom:   tx.ValidFrom,
		ValidUntil:  tx.ValidUntil,
	}
}

type Slice struct {
	Transactions []TransactionLayout
}

type Block struct {
	Number       uint64
	Hash         common.Hash
	PreviousHash common.Hash
	Miner        common.Address
	Timestamp    int64
	Log2NumLanes uint32
	Slices       []Slice
}

func (blk *Block) NumTransactions() int {
	n := 0
	for _, s := range blk.Slices {
		n += len(s.Transactions)
	}
	return n
}
