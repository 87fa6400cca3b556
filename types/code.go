package types

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// CodeInfo is the stored form of a smart contract: a version byte, the
// 32-byte code hash and then the code itself.
type CodeInfo struct {
	data []byte
}

func NewCodeInfo(data []byte) *CodeInfo {
	if len(data) <= 33 {
		panic("Invalid length for CodeInfo")
	}
	return &CodeInfo{data: data}
}

func CodeInfoFromCode(code []byte) *CodeInfo {
	bz := make([]byte, 33, 33+len(code))
	bz[0] = 0 // version byte is zero
	copy(bz[1:33], crypto.Keccak256(code))
	return &CodeInfo{data: append(bz, code...)}
}

func (info *CodeInfo) CodeHashSlice() []byte {
	return info.data[1:33]
}

func (info *CodeInfo) CodeSlice() []byte {
	return info.data[33:]
}

func (info *CodeInfo) Bytes() []byte {
	if info == nil {
		return nil
	}
	return info.data
}
