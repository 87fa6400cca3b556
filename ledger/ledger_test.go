package ledger

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/config"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

type testAccount struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newAccount(t *testing.T) testAccount {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return testAccount{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

// accountInLane returns an account whose balance and deed both live in lane
func accountInLane(t *testing.T, log2NumLanes, lane uint32) testAccount {
	for {
		acc := newAccount(t)
		if types.TokenResource(acc.addr).Lane(log2NumLanes) == lane &&
			types.DeedResource(acc.addr).Lane(log2NumLanes) == lane {
			return acc
		}
	}
}

func (a testAccount) sign(t *testing.T, tx *types.Transaction) *types.Transaction {
	tx.From = a.addr
	tx.AddSignatory(&a.key.PublicKey)
	require.NoError(t, tx.Sign(a.key))
	return tx
}

func newTestUnit(t *testing.T, log2NumLanes uint32) *storage.ShardedUnit {
	u := storage.NewMockShardedUnit(log2NumLanes, log.NewNopLogger())
	t.Cleanup(func() { u.Close() })
	return u
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SliceWaitTimeout = config.Duration{Duration: 100 * time.Millisecond}
	cfg.SettleFeesTimeout = config.Duration{Duration: 100 * time.Millisecond}
	cfg.StartRetryInterval = config.Duration{Duration: 10 * time.Millisecond}
	return cfg
}

func newTestExecutor(unit storage.Unit) *Executor {
	return NewExecutor(unit, chaincode.DefaultRegistry(), testEngine{}, testConfig(), log.NewNopLogger())
}

func setBalance(store storage.KVStore, addr common.Address, balance uint64) {
	info := types.ZeroAccountInfo()
	if bz := store.Get(types.TokenResource(addr)); bz != nil {
		info = types.NewAccountInfo(append([]byte{}, bz...))
	}
	info.UpdateBalance(balance)
	store.Set(types.TokenResource(addr), info.Bytes())
}

func balanceOf(store storage.KVStore, addr common.Address) uint64 {
	bz := store.Get(types.TokenResource(addr))
	if bz == nil {
		return 0
	}
	return types.NewAccountInfo(append([]byte{}, bz...)).Balance()
}

// maskOf covers the balances of addrs
func maskOf(log2NumLanes uint32, addrs ...common.Address) types.ShardMask {
	mask := types.NewShardMask(uint32(1) << log2NumLanes)
	for _, addr := range addrs {
		mask.Set(types.TokenResource(addr).Lane(log2NumLanes))
	}
	return mask
}

func submit(t *testing.T, unit storage.Unit, tx *types.Transaction) common.Hash {
	require.NoError(t, unit.AddTransaction(tx))
	return tx.Digest()
}

type setArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func setData(key, value string) []byte {
	bz, _ := json.Marshal(setArgs{Key: key, Value: value})
	return bz
}

// keyInLane finds a state key of scope which maps to lane
func keyInLane(scope string, log2NumLanes, lane uint32) string {
	for i := 0; ; i++ {
		key := fmt.Sprintf("key%d", i)
		if types.ResourceAddressFromScope(scope, key).Lane(log2NumLanes) == lane {
			return key
		}
	}
}

// testEngine runs a tiny key/value program: "set" stores a value, "fail"
// stores it and reports failure, "boom" stores it and panics
type testEngine struct{}

func (testEngine) Run(code []byte, action string, input []byte, env *chaincode.Environment) (chaincode.ResultStatus, int64, uint64) {
	var args setArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return chaincode.FAILED, 0, 1
	}
	switch action {
	case "set":
		if env.State.Set(args.Key, []byte(args.Value)) != storage.OK {
			return chaincode.FAILED, 0, 1
		}
		return chaincode.OK, int64(len(args.Value)), 1
	case "fail":
		env.State.Set(args.Key, []byte(args.Value))
		return chaincode.FAILED, 0, 1
	case "boom":
		env.State.Set(args.Key, []byte(args.Value))
		panic("engine failure")
	}
	return chaincode.NOT_FOUND, 0, 0
}

func (testEngine) Query(code []byte, name string, request []byte, env *chaincode.Environment) (chaincode.ResultStatus, []byte) {
	v, status := env.State.Get(string(request))
	if status != storage.OK {
		return chaincode.FAILED, nil
	}
	return chaincode.OK, v
}
