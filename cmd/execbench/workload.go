package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/seehuhn/mt19937"

	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

const (
	initialWealth = 1_000_000
	maxTransfer   = 1000
	chargeLimit   = 10
)

type account struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// workload produces blocks of random transfers between a fixed set of accounts
type workload struct {
	rng          *rand.Rand
	accounts     []account
	log2NumLanes uint32
	maxSlices    int
	txsPerBlock  int
	counter      uint64
	miner        common.Address
}

func newWorkload(seed int64, numAccounts int, log2NumLanes uint32, txsPerBlock, maxSlices int) (*workload, error) {
	rng := rand.New(mt19937.New())
	rng.Seed(seed)
	w := &workload{
		rng:          rng,
		accounts:     make([]account, numAccounts),
		log2NumLanes: log2NumLanes,
		maxSlices:    maxSlices,
		txsPerBlock:  txsPerBlock,
		miner:        common.HexToAddress("0x3171e4"),
	}
	for i := range w.accounts {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		w.accounts[i] = account{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	}
	return w, nil
}

// lanes a transaction holds while it runs: its own mask plus the sender's
// balance and deed
func (w *workload) footprint(tx *types.Transaction) types.ShardMask {
	return tx.Mask.Union(types.NewShardMaskFromLanes(w.log2NumLanes,
		types.TokenResource(tx.From).Lane(w.log2NumLanes),
		types.DeedResource(tx.From).Lane(w.log2NumLanes)))
}

func (w *workload) mask(addrs ...common.Address) types.ShardMask {
	lanes := make([]uint32, len(addrs))
	for i, addr := range addrs {
		lanes[i] = types.TokenResource(addr).Lane(w.log2NumLanes)
	}
	return types.NewShardMaskFromLanes(w.log2NumLanes, lanes...)
}

func (w *workload) newBlock(number uint64) *types.Block {
	return &types.Block{
		Number:       number,
		Hash:         crypto.Keccak256Hash([]byte("execbench"), common.BigToHash(new(big.Int).SetUint64(number)).Bytes()),
		Miner:        w.miner,
		Log2NumLanes: w.log2NumLanes,
	}
}

// pack puts every transaction into the first slice it does not share a lane
// with, opening new slices up to maxSlices. Transactions which fit nowhere
// are left out.
func (w *workload) pack(blk *types.Block, txs []*types.Transaction) []*types.Transaction {
	used := make([]types.ShardMask, 0, w.maxSlices)
	packed := make([]*types.Transaction, 0, len(txs))
	for _, tx := range txs {
		fp := w.footprint(tx)
		placed := false
		for i := range used {
			if !used[i].Overlaps(fp) {
				used[i] = used[i].Union(fp)
				blk.Slices[i].Transactions = append(blk.Slices[i].Transactions, types.NewTransactionLayout(tx, w.log2NumLanes))
				placed = true
				break
			}
		}
		if !placed && len(used) < w.maxSlices {
			used = append(used, fp)
			blk.Slices = append(blk.Slices, types.Slice{
				Transactions: []types.TransactionLayout{types.NewTransactionLayout(tx, w.log2NumLanes)},
			})
			placed = true
		}
		if placed {
			packed = append(packed, tx)
		}
	}
	return packed
}

// genesisBlock credits every account through wealth creation, one slice
// holding all of them
func (w *workload) genesisBlock(unit storage.Unit, number uint64) (*types.Block, error) {
	data, err := json.Marshal(map[string]uint64{"amount": initialWealth})
	if err != nil {
		return nil, err
	}
	blk := w.newBlock(number)
	var slice types.Slice
	for _, acc := range w.accounts {
		w.counter++
		tx := &types.Transaction{
			From:         acc.addr,
			ValidUntil:   number + 1,
			ChargeLimit:  chargeLimit,
			ContractMode: types.CHAIN_CODE,
			ChainCode:    types.TokenContractName,
			Action:       types.WealthAction,
			Data:         data,
			Mask:         w.mask(acc.addr),
			Counter:      w.counter,
		}
		if err := unit.AddTransaction(tx); err != nil {
			return nil, err
		}
		slice.Transactions = append(slice.Transactions, types.NewTransactionLayout(tx, w.log2NumLanes))
	}
	blk.Slices = []types.Slice{slice}
	return blk, nil
}

func (w *workload) transferBlock(unit storage.Unit, number uint64) (*types.Block, error) {
	txs := make([]*types.Transaction, 0, w.txsPerBlock)
	for i := 0; i < w.txsPerBlock; i++ {
		sender := w.accounts[w.rng.Intn(len(w.accounts))]
		receiver := w.accounts[w.rng.Intn(len(w.accounts))].addr
		w.counter++
		tx := &types.Transaction{
			From:        sender.addr,
			ValidUntil:  number + 1,
			ChargeRate:  uint64(1 + w.rng.Intn(3)),
			ChargeLimit: chargeLimit,
			Mask:        w.mask(sender.addr, receiver),
			Transfers:   []types.Transfer{{To: receiver, Amount: uint64(w.rng.Intn(maxTransfer))}},
			Counter:     w.counter,
		}
		tx.AddSignatory(&sender.key.PublicKey)
		if err := tx.Sign(sender.key); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	blk := w.newBlock(number)
	for _, tx := range w.pack(blk, txs) {
		if err := unit.AddTransaction(tx); err != nil {
			return nil, err
		}
	}
	return blk, nil
}
