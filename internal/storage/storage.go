package storage

import (
	"context"

	"merchantIndexer/internal/model"
)

// Storage defines a sink for merchant records.
type Storage interface {
	PutMerchantBatch(ctx context.Context, records []model.MerchantContract) error
}
