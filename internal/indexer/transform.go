package indexer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"merchantIndexer/internal/chain"
	"merchantIndexer/internal/felt"
	"merchantIndexer/internal/model"
)

// buildBatch converts an RPC block into the extractor's batch form. A
// transaction without a receipt keeps a nil Receipt.
func buildBatch(block *chain.Block) *model.Transactions {
	batch := &model.Transactions{
		BlockNumber:             block.BlockNumber,
		TransactionsWithReceipt: make([]model.TransactionWithReceipt, 0, len(block.Transactions)),
	}
	if block.BlockHash != nil {
		batch.BlockHash = feltBytes(*block.BlockHash)
	}

	for _, tx := range block.Transactions {
		record := model.TransactionWithReceipt{Hash: feltBytes(tx.Transaction.TransactionHash)}
		if tx.Receipt != nil {
			receipt := &model.Receipt{Events: make([]model.Event, 0, len(tx.Receipt.Events))}
			for _, ev := range tx.Receipt.Events {
				receipt.Events = append(receipt.Events, model.Event{
					FromAddress: feltBytes(ev.FromAddress),
					Keys:        feltSlice(ev.Keys),
					Data:        feltSlice(ev.Data),
				})
			}
			record.Receipt = receipt
		}
		batch.TransactionsWithReceipt = append(batch.TransactionsWithReceipt, record)
	}
	return batch
}

func feltBytes(f felt.Felt) hexutil.Bytes {
	b := f.Bytes()
	return b[:]
}

func feltSlice(felts []felt.Felt) []hexutil.Bytes {
	out := make([]hexutil.Bytes, 0, len(felts))
	for _, f := range felts {
		out = append(out, feltBytes(f))
	}
	return out
}
