package types

import (
	"github.com/tinylib/msgp/msgp"
)

// ShardMask is encoded as a two element array: the size in bits and the
// backing 64-bit words.

func (m *ShardMask) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, m.Msgsize())
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendUint32(o, m.size)
	words := m.Words()
	o = msgp.AppendArrayHeader(o, uint32(len(words)))
	for _, w := range words {
		o = msgp.AppendUint64(o, w)
	}
	return
}

func (m *ShardMask) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var sz uint32
	sz, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	if sz != 2 {
		err = msgp.ArrayError{Wanted: 2, Got: sz}
		return
	}
	var size uint32
	size, bts, err = msgp.ReadUint32Bytes(bts)
	if err != nil {
		err = msgp.WrapError(err, "size")
		return
	}
	var n uint32
	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err, "words")
		return
	}
	words := make([]uint64, n)
	for i := range words {
		words[i], bts, err = msgp.ReadUint64Bytes(bts)
		if err != nil {
			err = msgp.WrapError(err, "words", i)
			return
		}
	}
	*m = ShardMaskFromWords(size, words)
	o = bts
	return
}

func (m *ShardMask) Msgsize() int {
	return msgp.ArrayHeaderSize + msgp.Uint32Size + msgp.ArrayHeaderSize + len(m.Words())*msgp.Uint64Size
}
