package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"merchantIndexer/internal/chain"
	"merchantIndexer/internal/extract"
	"merchantIndexer/internal/model"
	"merchantIndexer/internal/storage"
)

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// BlockSource supplies blocks with receipts.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockWithReceipts(ctx context.Context, number uint64) (*chain.Block, error)
}

// Runner fetches blocks, maps each one through the extractor and writes the
// resulting merchant records to storage.
type Runner struct {
	cfg        RunConfig
	source     BlockSource
	extractor  *extract.Extractor
	storage    storage.Storage
	checkpoint Checkpointer
	logger     *zap.Logger
}

// NewRunner builds a Runner with its dependencies. checkpoint may be nil.
func NewRunner(cfg RunConfig, source BlockSource, extractor *extract.Extractor, storageSink storage.Storage, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		extractor:  extractor,
		storage:    storageSink,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("block source is nil")
	}
	if r.extractor == nil {
		return fmt.Errorf("extractor is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.latestWithRetry(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		records, err := r.processRange(ctx, blockRange)
		if err != nil {
			return err
		}

		if err := r.storage.PutMerchantBatch(ctx, records); err != nil {
			return fmt.Errorf("store merchants: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("merchants", len(records)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) processRange(ctx context.Context, blockRange BlockRange) ([]model.MerchantContract, error) {
	records := make([]model.MerchantContract, 0)
	for number := blockRange.From; number <= blockRange.To; number++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		block, err := r.blockWithRetry(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("fetch block %d: %w", number, err)
		}

		events, stats, err := r.extractor.Extract(buildBatch(block))
		if err != nil {
			return nil, fmt.Errorf("map block %d: %w", number, err)
		}
		records = append(records, events.MerchantContracts...)

		if stats.Matched > 0 {
			r.logger.Debug("block mapped",
				zap.Uint64("block_number", number),
				zap.Int("events", stats.Events),
				zap.Int("matched", stats.Matched),
				zap.Int("merchants", stats.Projected),
			)
		}

		if number == blockRange.To {
			break
		}
	}
	return records, nil
}

func (r *Runner) blockWithRetry(ctx context.Context, number uint64) (*chain.Block, error) {
	var block *chain.Block
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(attempt int, err error) {
		r.logger.Warn("block fetch failed", zap.Error(err), zap.Uint64("block_number", number), zap.Int("attempt", attempt))
	}, func(ctx context.Context) error {
		var err error
		block, err = r.source.BlockWithReceipts(ctx, number)
		return err
	})
	return block, err
}

func (r *Runner) latestWithRetry(ctx context.Context) (uint64, error) {
	var latest uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(attempt int, err error) {
		r.logger.Warn("latest block fetch failed", zap.Error(err), zap.Int("attempt", attempt))
	}, func(ctx context.Context) error {
		var err error
		latest, err = r.source.LatestBlockNumber(ctx)
		return err
	})
	return latest, err
}
