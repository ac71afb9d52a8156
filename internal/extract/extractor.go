// Package extract maps batches of Starknet transactions to merchant creation
// records emitted by the rewards factory contract.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"merchantIndexer/internal/factory"
	"merchantIndexer/internal/felt"
	"merchantIndexer/internal/model"
)

// DefaultFactoryAddress is the deployed rewards factory contract.
const DefaultFactoryAddress = "06c0b75d53c757cc1979d3aaa9482ac449ae0dfd1e5a9807b24478cf4da2d5f8"

// ErrMissingReceipt is returned when a transaction in the batch has no receipt.
var ErrMissingReceipt = errors.New("transaction missing receipt")

// Config selects the contracts whose events are decoded.
type Config struct {
	Addresses []string
}

// Stats counts how events in one batch were handled.
type Stats struct {
	Transactions int
	Events       int
	Matched      int
	Undecoded    int
	OtherVariant int
	Projected    int
}

// Extractor is safe for concurrent use; it holds only immutable configuration.
type Extractor struct {
	targets map[string]struct{}
	decoder *factory.Decoder
	logger  *zap.Logger
}

// NewExtractor validates the configured addresses and builds an Extractor.
func NewExtractor(cfg Config, logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	addresses := cfg.Addresses
	if len(addresses) == 0 {
		addresses = []string{DefaultFactoryAddress}
	}

	targets := make(map[string]struct{}, len(addresses))
	for _, address := range addresses {
		normalized, err := NormalizeAddress(address)
		if err != nil {
			return nil, err
		}
		targets[normalized] = struct{}{}
	}

	decoder, err := factory.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("factory abi: %w", err)
	}

	return &Extractor{
		targets: targets,
		decoder: decoder,
		logger:  logger,
	}, nil
}

// NormalizeAddress returns the unprefixed, lowercase, 64-digit form of an address.
func NormalizeAddress(address string) (string, error) {
	f, err := felt.FromHex(address)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", address, err)
	}
	return strings.TrimPrefix(f.Hex64(), "0x"), nil
}

// Map extracts merchant creation records from a batch. Any error aborts the
// batch and no records are returned.
func (x *Extractor) Map(batch *model.Transactions) (*model.Events, error) {
	events, _, err := x.Extract(batch)
	return events, err
}

// Extract is Map with per-batch counters.
func (x *Extractor) Extract(batch *model.Transactions) (*model.Events, Stats, error) {
	out := &model.Events{MerchantContracts: []model.MerchantContract{}}
	var stats Stats
	if batch == nil {
		return out, stats, nil
	}
	stats.Transactions = len(batch.TransactionsWithReceipt)

	err := scanEvents(batch, func(txIndex int, event *model.Event) error {
		stats.Events++
		if !x.isTarget(event.FromAddress) {
			return nil
		}
		stats.Matched++

		decoded, err := x.decode(event)
		if err != nil {
			if errors.Is(err, factory.ErrUnknownSelector) || errors.Is(err, factory.ErrLayoutMismatch) {
				stats.Undecoded++
				x.logger.Debug("skip undecodable event", zap.Int("tx_index", txIndex), zap.Error(err))
				return nil
			}
			return fmt.Errorf("transaction %d: %w", txIndex, err)
		}

		created, ok := decoded.(factory.MerchantCreated)
		if !ok {
			stats.OtherVariant++
			return nil
		}
		out.MerchantContracts = append(out.MerchantContracts, project(created))
		stats.Projected++
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// isTarget compares the padded hex form of a raw address with the targets.
func (x *Extractor) isTarget(fromAddress []byte) bool {
	if len(fromAddress) > felt.Size {
		return false
	}
	_, ok := x.targets[common.Bytes2Hex(common.LeftPadBytes(fromAddress, felt.Size))]
	return ok
}

func (x *Extractor) decode(event *model.Event) (factory.Event, error) {
	from, err := felt.FromBytes(event.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("from_address: %w", err)
	}
	keys, err := toFelts("key", event.Keys)
	if err != nil {
		return nil, err
	}
	data, err := toFelts("data", event.Data)
	if err != nil {
		return nil, err
	}

	return x.decoder.Decode(factory.EmittedEvent{
		FromAddress: from,
		Keys:        keys,
		Data:        data,
	})
}

func toFelts[T ~[]byte](kind string, raw []T) ([]felt.Felt, error) {
	out := make([]felt.Felt, 0, len(raw))
	for i, b := range raw {
		f, err := felt.FromBytes([]byte(b))
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", kind, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func project(created factory.MerchantCreated) model.MerchantContract {
	return model.MerchantContract{
		MerchantAddress: created.Merchant.Hex64(),
		PointsContract:  created.PointsContract.Hex64(),
	}
}
