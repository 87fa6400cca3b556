package types

import "errors"

var (
	ErrTxNotFound        = errors.New("tx not found")
	ErrBadSignature      = errors.New("bad signature")
	ErrNoSignatories     = errors.New("tx has no signatories")
	ErrMaskSizeMismatch  = errors.New("shard mask size does not match the number of lanes")
	ErrInvalidIdentifier = errors.New("invalid contract identifier")
	ErrBadDeed           = errors.New("bad deed")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
