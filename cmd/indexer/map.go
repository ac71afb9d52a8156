package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"merchantIndexer/internal/codec"
	"merchantIndexer/internal/config"
	"merchantIndexer/internal/extract"
	"merchantIndexer/internal/model"
)

func runMap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMap(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	extractor, err := extract.NewExtractor(extract.Config{Addresses: cfg.Addresses}, logger)
	if err != nil {
		return err
	}

	logger.Info("map start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("format", cfg.Format),
		zap.Strings("addresses", cfg.Addresses),
	)

	switch cfg.Format {
	case "jsonl":
		return mapJSONL(cfg, extractor, logger)
	case "proto":
		return mapProto(cfg, extractor, logger)
	default:
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

// mapJSONL reads one Transactions batch per line and writes one merchant
// record per line. A batch's records are written only after the whole batch
// mapped successfully.
func mapJSONL(cfg config.MapConfig, extractor *extract.Extractor, logger *zap.Logger) error {
	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := newJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var batches, merchants int
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var batch model.Transactions
		if err := json.Unmarshal(raw, &batch); err != nil {
			return fmt.Errorf("line %d: parse batch: %w", line, err)
		}

		events, err := extractor.Map(&batch)
		if err != nil {
			return fmt.Errorf("line %d: map batch: %w", line, err)
		}
		for _, record := range events.MerchantContracts {
			if err := outWriter.Write(record); err != nil {
				return err
			}
		}
		batches++
		merchants += len(events.MerchantContracts)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	if err := outWriter.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("map complete", zap.Int("batches", batches), zap.Int("merchants", merchants))
	return nil
}

// mapProto maps a single protobuf Transactions message into an Events message.
func mapProto(cfg config.MapConfig, extractor *extract.Extractor, logger *zap.Logger) error {
	raw, err := readInput(cfg.In)
	if err != nil {
		return err
	}

	batch, err := codec.UnmarshalTransactions(raw)
	if err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}

	events, err := extractor.Map(batch)
	if err != nil {
		return fmt.Errorf("map batch: %w", err)
	}

	if err := ensureDir(cfg.Out); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Out, codec.MarshalEvents(events), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("map complete",
		zap.Uint64("block_number", batch.BlockNumber),
		zap.Int("transactions", len(batch.TransactionsWithReceipt)),
		zap.Int("merchants", len(events.MerchantContracts)),
	)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return raw, nil
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
	closed bool
}

func newJSONLWriter(path string, appendMode bool) (*jsonlWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}
