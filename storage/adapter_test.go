package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartbch/moeingledger/types"
)

type mapStore map[string][]byte

func (m mapStore) Get(addr types.ResourceAddress) []byte {
	return m[addr.ID()]
}

func (m mapStore) Set(addr types.ResourceAddress, value []byte) {
	m[addr.ID()] = value
}

func (m mapStore) Delete(addr types.ResourceAddress) {
	delete(m, addr.ID())
}

// keyInLane finds a key of scope which maps to the wanted lane
func keyInLane(scope string, log2NumLanes, lane uint32) string {
	for i := 0; ; i++ {
		key := fmt.Sprintf("key%d", i)
		if types.ResourceAddressFromScope(scope, key).Lane(log2NumLanes) == lane {
			return key
		}
	}
}

func TestCachedStorageAdapter(t *testing.T) {
	parent := mapStore{}
	a := types.NewResourceAddress("a")
	b := types.NewResourceAddress("b")
	parent.Set(b, []byte("old"))

	c := NewCachedStorageAdapter(parent)
	c.Set(a, []byte("1"))
	c.Delete(b)
	require.Equal(t, []byte("1"), c.Get(a))
	require.Nil(t, c.Get(b))
	require.Nil(t, parent.Get(a))
	require.Equal(t, []byte("old"), parent.Get(b))
	require.Equal(t, 2, c.NumPending())

	c.Flush()
	require.Equal(t, []byte("1"), parent.Get(a))
	require.Nil(t, parent.Get(b))
	require.Panics(t, func() { c.Flush() })
	require.Panics(t, func() { c.Clear() })

	c = NewCachedStorageAdapter(parent)
	c.Set(a, []byte("2"))
	c.Clear()
	require.Equal(t, []byte("1"), parent.Get(a))
	require.Panics(t, func() { c.Set(a, []byte("3")) })
}

func TestStateSentinelAdapter(t *testing.T) {
	parent := mapStore{}
	mask := types.NewShardMaskFromLanes(1, 0)
	s := NewStateSentinelAdapter(parent, "my.contract", mask)
	inside := keyInLane("my.contract", 1, 0)
	outside := keyInLane("my.contract", 1, 1)

	require.Equal(t, OK, s.Set(inside, []byte("hello")))
	require.Equal(t, uint64(5), s.BytesWritten())
	v, status := s.Get(inside)
	require.Equal(t, OK, status)
	require.Equal(t, []byte("hello"), v)
	require.True(t, s.Exists(inside))
	require.Equal(t, []byte("hello"), parent[types.ResourceAddressFromScope("my.contract", inside).ID()])

	require.Equal(t, PERMISSION_DENIED, s.Set(outside, []byte("x")))
	_, status = s.Get(outside)
	require.Equal(t, PERMISSION_DENIED, status)
	require.Equal(t, PERMISSION_DENIED, s.Delete(outside))
	require.Equal(t, 3, s.Violations())
	require.Len(t, parent, 1)
	require.Equal(t, uint64(5), s.BytesWritten())

	_, status = s.Get(keyInLane("my.contract", 1, 0) + "missing")
	require.NotEqual(t, OK, status)
}
