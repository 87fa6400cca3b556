package types

import (
	"encoding/binary"
)

// AccountInfo is the fixed-size record kept by the token contract for each
// address: an 8-byte balance followed by an 8-byte stake, both big endian.
type AccountInfo struct {
	data []byte
}

const AccountInfoSize = 16

func NewAccountInfo(data []byte) *AccountInfo {
	if len(data) != AccountInfoSize {
		panic("Invalid length for AccountInfo")
	}
	return &AccountInfo{data: data}
}

func ZeroAccountInfo() *AccountInfo {
	return &AccountInfo{data: make([]byte, AccountInfoSize)}
}

func (info *AccountInfo) BalanceSlice() []byte {
	return info.data[0:8]
}

func (info *AccountInfo) StakeSlice() []byte {
	return info.data[8:16]
}

func (info *AccountInfo) Bytes() []byte {
	return info.data
}

func (info *AccountInfo) Balance() uint64 {
	return binary.BigEndian.Uint64(info.BalanceSlice())
}

func (info *AccountInfo) UpdateBalance(newBalance uint64) {
	binary.BigEndian.PutUint64(info.BalanceSlice(), newBalance)
}

func (info *AccountInfo) Stake() uint64 {
	return binary.BigEndian.Uint64(info.StakeSlice())
}

func (info *AccountInfo) UpdateStake(newStake uint64) {
	binary.BigEndian.PutUint64(info.StakeSlice(), newStake)
}
