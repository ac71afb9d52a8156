package extract

import (
	"fmt"

	"merchantIndexer/internal/model"
)

// scanEvents visits every event in transaction order, then receipt order.
// It stops at the first transaction without a receipt or the first error
// returned by fn.
func scanEvents(batch *model.Transactions, fn func(txIndex int, event *model.Event) error) error {
	for i := range batch.TransactionsWithReceipt {
		receipt := batch.TransactionsWithReceipt[i].Receipt
		if receipt == nil {
			return fmt.Errorf("transaction %d: %w", i, ErrMissingReceipt)
		}
		for j := range receipt.Events {
			if err := fn(i, &receipt.Events[j]); err != nil {
				return err
			}
		}
	}
	return nil
}
