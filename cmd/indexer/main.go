package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"merchantIndexer/internal/chain"
	"merchantIndexer/internal/config"
	"merchantIndexer/internal/extract"
	"merchantIndexer/internal/indexer"
	"merchantIndexer/internal/storage"
	"merchantIndexer/internal/storage/postgres"
)

const checkpointStateName = "merchant_factory"

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Starknet merchant factory indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Index merchant creations from a Starknet node",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "Starknet RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("address", []string{extract.DefaultFactoryAddress}, "factory contract addresses (comma-separated)")
	runCmd.Flags().Uint64("batch-size", 100, "blocks per storage flush")
	runCmd.Flags().String("sink", "jsonl", "record sink (jsonl, postgres)")
	runCmd.Flags().String("out", "./data/merchants.jsonl", "output JSONL path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().String("checkpoint-mode", "file", "checkpoint backend (file, postgres, none)")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Map transaction batches from a file into merchant records",
		RunE:  runMap,
	}

	mapCmd.Flags().String("in", "", "input batches (JSONL or protobuf)")
	mapCmd.Flags().String("out", "./data/merchants.jsonl", "output path")
	mapCmd.Flags().String("format", "jsonl", "input/output format (jsonl, proto)")
	mapCmd.Flags().StringSlice("address", []string{extract.DefaultFactoryAddress}, "factory contract addresses (comma-separated)")
	mapCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(mapCmd)

	selectorCmd := &cobra.Command{
		Use:   "selector [name...]",
		Short: "Print Starknet event selectors",
		RunE:  runSelector,
	}
	selectorCmd.Flags().Bool("list", false, "list the decodable factory event variants")

	root.AddCommand(selectorCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	extractor, err := extract.NewExtractor(extract.Config{Addresses: cfg.Addresses}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	sink, checkpoint, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, extractor, sink, checkpoint, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Strings("addresses", cfg.Addresses),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("sink", cfg.Sink),
		zap.String("checkpoint_mode", cfg.CheckpointMode),
	)

	return runner.Run(ctx)
}

func openSink(ctx context.Context, cfg config.Config) (storage.Storage, indexer.Checkpointer, func(), error) {
	var store *postgres.Store
	if cfg.Sink == "postgres" || cfg.CheckpointMode == "postgres" {
		var err error
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
	}
	closeFn := func() {
		if store != nil {
			store.Close()
		}
	}

	var sink storage.Storage
	switch cfg.Sink {
	case "jsonl":
		sink = storage.NewJsonlStorage(cfg.Out)
	case "postgres":
		sink = store
	default:
		closeFn()
		return nil, nil, nil, fmt.Errorf("unsupported sink: %s", cfg.Sink)
	}

	var checkpoint indexer.Checkpointer
	switch cfg.CheckpointMode {
	case "file":
		checkpoint = indexer.NewFileCheckpoint(cfg.Checkpoint)
	case "postgres":
		checkpoint = postgres.NewStateCheckpoint(store, checkpointStateName)
	case "none", "":
	default:
		closeFn()
		return nil, nil, nil, fmt.Errorf("unsupported checkpoint mode: %s", cfg.CheckpointMode)
	}

	return sink, checkpoint, closeFn, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
