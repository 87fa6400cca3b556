package types

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDeedVerify(t *testing.T) {
	keyA, _ := crypto.GenerateKey()
	keyB, _ := crypto.GenerateKey()
	addrA := crypto.PubkeyToAddress(keyA.PublicKey)
	addrB := crypto.PubkeyToAddress(keyB.PublicKey)

	deed := NewDeed()
	require.False(t, deed.IsSane())
	deed.Signees[addrA] = 1
	deed.Signees[addrB] = 2
	deed.Thresholds[DeedTransfer] = 2
	deed.Thresholds[DeedExecute] = 3
	require.True(t, deed.IsSane())
	require.Equal(t, uint64(3), deed.TotalWeight())

	signedBy := func(keys ...*ecdsa.PrivateKey) *Transaction {
		tx := newTestTx(addrA)
		for _, k := range keys {
			tx.AddSignatory(&k.PublicKey)
		}
		return tx
	}
	require.False(t, deed.Verify(signedBy(keyA), DeedTransfer))
	// the same signer counted once
	require.False(t, deed.Verify(signedBy(keyA, keyA), DeedTransfer))
	require.True(t, deed.Verify(signedBy(keyB), DeedTransfer))
	require.False(t, deed.Verify(signedBy(keyB), DeedExecute))
	require.True(t, deed.Verify(signedBy(keyA, keyB), DeedExecute))
	require.False(t, deed.Verify(signedBy(keyA, keyB), DeedAmend))

	deed.Thresholds[DeedAmend] = 4
	require.False(t, deed.IsSane())
}

func TestDeedEncodingIsDeterministic(t *testing.T) {
	deed := NewDeed()
	for i := byte(1); i < 20; i++ {
		var addr [20]byte
		addr[0] = i
		deed.Signees[addr] = uint64(i)
	}
	deed.Thresholds[DeedTransfer] = 5
	deed.Thresholds[DeedExecute] = 6
	first, err := deed.MarshalMsg(nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		bz, err := deed.MarshalMsg(nil)
		require.NoError(t, err)
		require.Equal(t, first, bz)
	}
	decoded := NewDeed()
	_, err = decoded.UnmarshalMsg(first)
	require.NoError(t, err)
	require.Equal(t, deed.Signees, decoded.Signees)
	require.Equal(t, deed.Thresholds, decoded.Thresholds)
}
