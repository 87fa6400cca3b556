package types

//go:generate msgp -io=false -tests=false

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type ContractMode uint8

const (
	NOT_PRESENT ContractMode = 0
	PRESENT     ContractMode = 1
	CHAIN_CODE  ContractMode = 2
	SYNERGETIC  ContractMode = 3
)

func (m ContractMode) String() string {
	switch m {
	case NOT_PRESENT:
		return "not-present"
	case PRESENT:
		return "present"
	case CHAIN_CODE:
		return "chain-code"
	case SYNERGETIC:
		return "synergetic"
	}
	return "unknown"
}

type Transfer struct {
	To     common.Address `msg:"to"`
	Amount uint64         `msg:"amount"`
}

type Signatory struct {
	PublicKey []byte `msg:"pubkey"` // 65-byte uncompressed secp256k1 key
	Signature []byte `msg:"sig"`    // 65-byte [R || S || V]
}

func (s Signatory) Address() common.Address {
	if len(s.PublicKey) != 65 {
		return common.Address{}
	}
	return common.BytesToAddress(crypto.Keccak256(s.PublicKey[1:])[12:])
}

type Transaction struct {
	From            common.Address `msg:"from"`
	ValidFrom       uint64         `msg:"validfrom"`
	ValidUntil      uint64         `msg:"validuntil"`
	ChargeRate      uint64         `msg:"chargerate"`
	ChargeLimit     uint64         `msg:"chargelimit"`
	ContractMode    ContractMode   `msg:"mode"`
	ContractAddress common.Address `msg:"contract"`
	ChainCode       string         `msg:"chaincode"`
	Action          string         `msg:"action"`
	Data            []byte         `msg:"data"`
	Mask            ShardMask      `msg:"mask"`
	Transfers       []Transfer     `msg:"transfers"`
	Counter         uint64         `msg:"counter"`
	Signatories     []Signatory    `msg:"signatories"`
}

// Digest is the keccak256 hash of the transaction payload. Signatures are
// excluded, the public keys of the signatories are not.
func (tx *Transaction) Digest() common.Hash {
	payload := *tx
	payload.Signatories = make([]Signatory, len(tx.Signatories))
	for i, s := range tx.Signatories {
		payload.Signatories[i] = Signatory{PublicKey: s.PublicKey}
	}
	bz, err := payload.MarshalMsg(nil)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(bz)
}

// AddSignatory registers a signer, it must be called for every signer before any Sign call
func (tx *Transaction) AddSignatory(pub *ecdsa.PublicKey) {
	tx.Signatories = append(tx.Signatories, Signatory{PublicKey: crypto.FromECDSAPub(pub)})
}

func (tx *Transaction) Sign(key *ecdsa.PrivateKey) error {
	pub := crypto.FromECDSAPub(&key.PublicKey)
	digest := tx.Digest()
	for i := range tx.Signatories {
		if string(tx.Signatories[i].PublicKey) != string(pub) {
			continue
		}
		sig, err := crypto.Sign(digest[:], key)
		if err != nil {
			return err
		}
		tx.Signatories[i].Signature = sig
		return nil
	}
	return ErrBadSignature
}

// Verify checks every signatory has a valid signature over the digest
func (tx *Transaction) Verify() error {
	if len(tx.Signatories) == 0 {
		return ErrNoSignatories
	}
	digest := tx.Digest()
	for _, s := range tx.Signatories {
		if len(s.Signature) != 65 {
			return ErrBadSignature
		}
		if !crypto.VerifySignature(s.PublicKey, digest[:], s.Signature[:64]) {
			return ErrBadSignature
		}
	}
	return nil
}

func (tx *Transaction) IsSignedBy(addr common.Address) bool {
	for _, s := range tx.Signatories {
		if s.Address() == addr {
			return true
		}
	}
	return false
}

func (tx *Transaction) TargetsContract() bool {
	return tx.ContractMode == PRESENT || tx.ContractMode == CHAIN_CODE || tx.ContractMode == SYNERGETIC
}

func (tx *Transaction) IsWealthCreation() bool {
	return tx.ContractMode == CHAIN_CODE && tx.ChainCode == TokenContractName && tx.Action == WealthAction
}

// MinimumCharge is the smallest charge limit which can pay for the transfers
// and the contract call of this transaction
func (tx *Transaction) MinimumCharge() uint64 {
	units := uint64(len(tx.Transfers)) * TransferCharge
	if tx.TargetsContract() {
		units++
	}
	return units
}
