package model

import "github.com/ethereum/go-ethereum/common/hexutil"

// Transactions is one batch of transactions with receipts, usually one block.
type Transactions struct {
	BlockNumber             uint64                   `json:"block_number"`
	BlockHash               hexutil.Bytes            `json:"block_hash,omitempty"`
	TransactionsWithReceipt []TransactionWithReceipt `json:"transactions_with_receipt"`
}

// TransactionWithReceipt pairs a transaction hash with its execution receipt.
// Receipt is nil when the upstream omitted it.
type TransactionWithReceipt struct {
	Hash    hexutil.Bytes `json:"hash,omitempty"`
	Receipt *Receipt      `json:"receipt,omitempty"`
}

// Receipt holds the events emitted by a transaction.
type Receipt struct {
	Events []Event `json:"events"`
}

// Event is a raw emitted event. Every element is a big-endian field element encoding.
type Event struct {
	FromAddress hexutil.Bytes   `json:"from_address"`
	Keys        []hexutil.Bytes `json:"keys"`
	Data        []hexutil.Bytes `json:"data"`
}
