package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/types"
)

func TestShardedUnitCommitAndRevert(t *testing.T) {
	u := NewMockShardedUnit(2, log.NewNopLogger())
	defer u.Close()

	a := types.NewResourceAddress("a")
	b := types.NewResourceAddress("b")
	require.Nil(t, u.Get(a))
	require.Equal(t, []byte{}, u.GetOrCreate(a))
	require.Equal(t, uint32(2), u.Log2NumLanes())

	genesis := u.CurrentHash()
	u.Set(a, []byte("1"))
	pending := u.CurrentHash()
	require.NotEqual(t, genesis, pending)
	h1, err := u.Commit(1)
	require.NoError(t, err)
	require.Equal(t, pending, h1)
	require.Equal(t, h1, u.LastCommitHash())
	require.True(t, u.HashExists(h1, 1))
	require.False(t, u.HashExists(h1, 2))

	u.Set(a, []byte("2"))
	u.Set(b, []byte("3"))
	h2, err := u.Commit(2)
	require.NoError(t, err)
	require.Equal(t, []byte("2"), u.Get(a))

	u.Delete(a)
	require.Nil(t, u.Get(a))
	require.NoError(t, u.RevertToHash(h2, 2))
	require.Equal(t, []byte("2"), u.Get(a))

	require.NoError(t, u.RevertToHash(h1, 1))
	require.Equal(t, []byte("1"), u.Get(a))
	require.Nil(t, u.Get(b))
	require.Equal(t, h1, u.LastCommitHash())
	require.Equal(t, uint64(1), u.LastCommitIndex())
	require.False(t, u.HashExists(h2, 2))

	require.ErrorIs(t, u.RevertToHash(common.HexToHash("0x1234"), 7), ErrUnknownHash)
}

func TestShardedUnitHashIsDeterministic(t *testing.T) {
	run := func() common.Hash {
		u := NewMockShardedUnit(1, log.NewNopLogger())
		defer u.Close()
		for _, id := range []string{"z", "y", "x"} {
			u.Set(types.NewResourceAddress(id), []byte(id))
		}
		h, err := u.Commit(1)
		require.NoError(t, err)
		return h
	}
	require.Equal(t, run(), run())
}

func TestShardedUnitTransactions(t *testing.T) {
	u := NewMockShardedUnit(1, log.NewNopLogger())
	defer u.Close()
	tx := &types.Transaction{
		From:        common.HexToAddress("0x1"),
		ChargeRate:  1,
		ChargeLimit: 5,
		Mask:        types.NewShardMaskFromLanes(1, 1),
	}
	digest := tx.Digest()
	require.False(t, u.HasTransaction(digest))
	_, err := u.GetTransaction(digest)
	require.ErrorIs(t, err, types.ErrTxNotFound)

	require.NoError(t, u.AddTransaction(tx))
	require.True(t, u.HasTransaction(digest))
	loaded, err := u.GetTransaction(digest)
	require.NoError(t, err)
	require.Equal(t, digest, loaded.Digest())
}
