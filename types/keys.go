package types

import (
	"encoding/binary"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Resource identifiers are "<scope>.state.<key>". The scope of a chain code
// is its dotted name, the scope of a smart contract is its hex address.
const StateSeparator = ".state."

const (
	TokenContractName      = "sbch.token"
	GovernanceContractName = "sbch.governance"
	StakeQueueResourceID   = "sbch.stake.state.queue"
	ContractCodeScope      = "sbch.contract.code"
)

// The bootstrap action which is allowed to mint tokens without being charged
// through the normal validation path. It is a short term measure until a
// genesis file is in place.
const WealthAction = "wealth"

const (
	// Charge units for each inline transfer of a transaction
	TransferCharge uint64 = 1
	// Charge units for each byte a contract writes into the state
	StorageFeePerByte uint64 = 1
	// Upper bound for the charge limit a sender may declare
	MaximumChargeLimit uint64 = 10_000_000_000
)

type ResourceAddress struct {
	id   string
	hash common.Hash
}

func NewResourceAddress(id string) ResourceAddress {
	return ResourceAddress{
		id:   id,
		hash: crypto.Keccak256Hash([]byte(id)),
	}
}

func ResourceAddressFromScope(scope, key string) ResourceAddress {
	return NewResourceAddress(scope + StateSeparator + key)
}

func (r ResourceAddress) ID() string {
	return r.id
}

func (r ResourceAddress) Hash() common.Hash {
	return r.hash
}

func (r ResourceAddress) Bytes() []byte {
	return r.hash[:]
}

// Lane returns the shard which owns the resource when the state is split
// into 2^log2NumLanes shards.
func (r ResourceAddress) Lane(log2NumLanes uint32) uint32 {
	lanes := uint32(1) << log2NumLanes
	return binary.LittleEndian.Uint32(r.hash[:4]) & (lanes - 1)
}

func (r ResourceAddress) Scope() string {
	if idx := strings.Index(r.id, StateSeparator); idx >= 0 {
		return r.id[:idx]
	}
	return ""
}

func AccountKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func DeedKey(addr common.Address) string {
	return "deed." + strings.ToLower(addr.Hex())
}

func TokenResource(addr common.Address) ResourceAddress {
	return ResourceAddressFromScope(TokenContractName, AccountKey(addr))
}

func DeedResource(addr common.Address) ResourceAddress {
	return ResourceAddressFromScope(TokenContractName, DeedKey(addr))
}

func ContractCodeResource(addr common.Address) ResourceAddress {
	return ResourceAddressFromScope(ContractCodeScope, strings.ToLower(addr.Hex()))
}

func StakeQueueResource() ResourceAddress {
	return NewResourceAddress(StakeQueueResourceID)
}
