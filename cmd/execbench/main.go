package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/smartbch/moeingledger/chaincode"
	"github.com/smartbch/moeingledger/config"
	"github.com/smartbch/moeingledger/ledger"
	"github.com/smartbch/moeingledger/storage"
	"github.com/smartbch/moeingledger/types"
)

const (
	flagConfig      = "config"
	flagHome        = "home"
	flagMemory      = "memory"
	flagBlocks      = "blocks"
	flagTxs         = "txs"
	flagSlices      = "slices"
	flagAccounts    = "accounts"
	flagSeed        = "seed"
	flagMetricsAddr = "metrics-addr"
	flagLogLevel    = "log-level"
)

var rootCmd = &cobra.Command{
	Use:   "execbench",
	Short: "Runs random transfer blocks through the parallel execution manager",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute and commit a number of generated blocks",
	RunE:  runBench,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Printf("%+v\n", *cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String(flagConfig, "", "toml file read on top of the defaults")
	rootCmd.PersistentFlags().String(flagHome, "", "data directory, overrides data_dir")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "log level, overrides log_level")

	runCmd.Flags().Bool(flagMemory, false, "keep all state in memory")
	runCmd.Flags().Int(flagBlocks, 10, "number of transfer blocks")
	runCmd.Flags().Int(flagTxs, 256, "transfers generated per block")
	runCmd.Flags().Int(flagSlices, 8, "maximum slices per block")
	runCmd.Flags().Int(flagAccounts, 64, "number of accounts")
	runCmd.Flags().Int64(flagSeed, 1, "seed of the transfer generator")
	runCmd.Flags().String(flagMetricsAddr, "", "serve prometheus metrics on this address")

	rootCmd.AddCommand(runCmd, configCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if home, _ := cmd.Flags().GetString(flagHome); home != "" {
		cfg.DataDir = home
	}
	if level, _ := cmd.Flags().GetString(flagLogLevel); level != "" {
		cfg.LogLevel = level
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	option, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, option), nil
}

func openUnit(cmd *cobra.Command, cfg *config.Config, logger log.Logger) (*storage.ShardedUnit, error) {
	if memory, _ := cmd.Flags().GetBool(flagMemory); memory {
		return storage.NewMockShardedUnit(cfg.Log2NumLanes, logger), nil
	}
	return storage.OpenShardedUnit(cfg.DataDir, cfg.Log2NumLanes, logger)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	blocks, _ := flags.GetInt(flagBlocks)
	txs, _ := flags.GetInt(flagTxs)
	slices, _ := flags.GetInt(flagSlices)
	accounts, _ := flags.GetInt(flagAccounts)
	seed, _ := flags.GetInt64(flagSeed)
	if accounts <= 0 || slices <= 0 {
		return errors.New("accounts and slices must be positive")
	}

	if addr, _ := flags.GetString(flagMetricsAddr); addr != "" {
		go func() {
			if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
				logger.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	unit, err := openUnit(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer unit.Close()

	w, err := newWorkload(seed, accounts, cfg.Log2NumLanes, txs, slices)
	if err != nil {
		return err
	}
	// only the native contracts are used, no smart contract engine is needed
	factory := ledger.DefaultExecutorFactory(unit, chaincode.DefaultRegistry(), nil, cfg, logger)
	m := ledger.NewExecutionManager(cfg, unit, factory, logger)
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()

	first := unit.LastCommitIndex() + 1
	genesis, err := w.genesisBlock(unit, first)
	if err != nil {
		return err
	}
	if err := runBlock(m, unit, genesis); err != nil {
		return err
	}

	start := time.Now()
	executed := 0
	for number := first + 1; number <= first+uint64(blocks); number++ {
		blk, err := w.transferBlock(unit, number)
		if err != nil {
			return err
		}
		if err := runBlock(m, unit, blk); err != nil {
			return err
		}
		executed += blk.NumTransactions()
	}
	elapsed := time.Since(start)
	fmt.Printf("executed %d transactions in %d blocks, %s, %.0f tx/s\n",
		executed, blocks, elapsed, float64(executed)/elapsed.Seconds())
	return nil
}

// runBlock executes blk and commits its state, a block that does not
// complete is rolled back
func runBlock(m *ledger.ExecutionManager, unit *storage.ShardedUnit, blk *types.Block) error {
	if status := m.Execute(blk); status != ledger.SCHEDULED {
		return errors.Errorf("block %d not scheduled: %s", blk.Number, status)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := m.WaitForIdle(ctx); err != nil {
		return errors.Wrapf(err, "block %d", blk.Number)
	}

	outcome := m.LastOutcome()
	fmt.Printf("block %d: %s, %d txs, success %d, failed %d, fees %d\n", blk.Number, outcome.Final,
		blk.NumTransactions(), outcome.Counts[types.CATEGORY_SUCCESS],
		outcome.Counts[types.CATEGORY_NORMAL_ERROR], outcome.Fees)
	if outcome.Final != ledger.COMPLETED {
		if err := unit.RevertToHash(unit.LastCommitHash(), unit.LastCommitIndex()); err != nil {
			return err
		}
		return errors.Errorf("block %d ended %s", blk.Number, outcome.Final)
	}
	if outcome.SettleErr != nil {
		fmt.Printf("block %d: %v\n", blk.Number, outcome.SettleErr)
	}
	hash, err := unit.Commit(blk.Number)
	if err != nil {
		return err
	}
	fmt.Printf("block %d: state %s\n", blk.Number, hash.Hex())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
