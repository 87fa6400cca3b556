package storage

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lvlerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/smartbch/moeingledger/types"
)

// key prefixes of the TxStore database
const (
	TX_KEY          byte = 1
	COMMIT_HASH_KEY byte = 2
	LAST_COMMIT_KEY byte = 3
)

// TxStore keeps the transactions referenced by blocks and the bookkeeping
// of committed state hashes. Transactions are stored msgp encoded, keyed by
// digest.
type TxStore struct {
	db *leveldb.DB
}

func OpenTxStore(dir string) (*TxStore, error) {
	cache := 64
	db, err := leveldb.OpenFile(dir, &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lvlerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open tx store at %s", dir)
	}
	return &TxStore{db: db}, nil
}

// NewMemTxStore returns a TxStore which lives only in memory
func NewMemTxStore() *TxStore {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		panic(err)
	}
	return &TxStore{db: db}
}

func txKey(digest common.Hash) []byte {
	return append([]byte{TX_KEY}, digest[:]...)
}

func commitHashKey(index uint64) []byte {
	var k [9]byte
	k[0] = COMMIT_HASH_KEY
	binary.BigEndian.PutUint64(k[1:], index)
	return k[:]
}

func (s *TxStore) AddTransaction(tx *types.Transaction) error {
	bz, err := tx.MarshalMsg(nil)
	if err != nil {
		return errors.Wrap(err, "encode tx")
	}
	digest := tx.Digest()
	return errors.Wrapf(s.db.Put(txKey(digest), bz, nil), "store tx %s", digest.Hex())
}

func (s *TxStore) GetTransaction(digest common.Hash) (*types.Transaction, error) {
	bz, err := s.db.Get(txKey(digest), nil)
	if err == lvlerrors.ErrNotFound {
		return nil, types.ErrTxNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "load tx %s", digest.Hex())
	}
	tx := &types.Transaction{}
	if _, err = tx.UnmarshalMsg(bz); err != nil {
		return nil, errors.Wrapf(err, "decode tx %s", digest.Hex())
	}
	return tx, nil
}

func (s *TxStore) HasTransaction(digest common.Hash) bool {
	ok, err := s.db.Has(txKey(digest), nil)
	return err == nil && ok
}

// RecordCommit remembers hash as the state hash at index and marks it as the
// latest commit, both in one batch
func (s *TxStore) RecordCommit(index uint64, hash common.Hash) error {
	batch := new(leveldb.Batch)
	batch.Put(commitHashKey(index), hash[:])
	last := make([]byte, 8+32)
	binary.BigEndian.PutUint64(last[:8], index)
	copy(last[8:], hash[:])
	batch.Put([]byte{LAST_COMMIT_KEY}, last)
	return errors.Wrap(s.db.Write(batch, nil), "record commit")
}

// ForgetCommitsAfter drops the commit hashes recorded above index
func (s *TxStore) ForgetCommitsAfter(index uint64, hash common.Hash) error {
	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	for ok := iter.Seek(commitHashKey(index + 1)); ok; ok = iter.Next() {
		key := iter.Key()
		if len(key) != 9 || key[0] != COMMIT_HASH_KEY {
			break
		}
		batch.Delete(append([]byte{}, key...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "scan commits")
	}
	last := make([]byte, 8+32)
	binary.BigEndian.PutUint64(last[:8], index)
	copy(last[8:], hash[:])
	batch.Put([]byte{LAST_COMMIT_KEY}, last)
	return errors.Wrap(s.db.Write(batch, nil), "forget commits")
}

func (s *TxStore) CommitHash(index uint64) (common.Hash, bool) {
	bz, err := s.db.Get(commitHashKey(index), nil)
	if err != nil || len(bz) != 32 {
		return common.Hash{}, false
	}
	return common.BytesToHash(bz), true
}

// LastCommit returns the latest recorded commit, ok is false on a fresh store
func (s *TxStore) LastCommit() (index uint64, hash common.Hash, ok bool) {
	bz, err := s.db.Get([]byte{LAST_COMMIT_KEY}, nil)
	if err != nil || len(bz) != 40 {
		return 0, common.Hash{}, false
	}
	return binary.BigEndian.Uint64(bz[:8]), common.BytesToHash(bz[8:]), true
}

func (s *TxStore) Close() error {
	return s.db.Close()
}
