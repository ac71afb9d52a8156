package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"merchantIndexer/internal/felt"
)

// Client wraps a JSON-RPC connection to a Starknet node.
type Client struct {
	rpcClient *rpc.Client
}

// Block is a block with receipts as returned by starknet_getBlockWithReceipts.
type Block struct {
	BlockHash    *felt.Felt               `json:"block_hash"`
	BlockNumber  uint64                   `json:"block_number"`
	Status       string                   `json:"status"`
	Transactions []TransactionWithReceipt `json:"transactions"`
}

// TransactionWithReceipt is one entry of a block's transactions.
type TransactionWithReceipt struct {
	Transaction Transaction `json:"transaction"`
	Receipt     *Receipt    `json:"receipt"`
}

type Transaction struct {
	TransactionHash felt.Felt `json:"transaction_hash"`
	Type            string    `json:"type"`
}

type Receipt struct {
	TransactionHash felt.Felt `json:"transaction_hash"`
	ExecutionStatus string    `json:"execution_status"`
	Events          []Event   `json:"events"`
}

type Event struct {
	FromAddress felt.Felt   `json:"from_address"`
	Keys        []felt.Felt `json:"keys"`
	Data        []felt.Felt `json:"data"`
}

type blockID struct {
	BlockNumber uint64 `json:"block_number"`
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return &Client{rpcClient: rpcClient}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the chain ID as reported by the node.
func (c *Client) ChainID(ctx context.Context) (felt.Felt, error) {
	var id felt.Felt
	if err := c.rpcClient.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return felt.Felt{}, err
	}
	return id, nil
}

// LatestBlockNumber returns the latest accepted block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	if err := c.rpcClient.CallContext(ctx, &number, "starknet_blockNumber"); err != nil {
		return 0, err
	}
	return number, nil
}

// BlockWithReceipts returns the block by number with every transaction receipt.
func (c *Client) BlockWithReceipts(ctx context.Context, number uint64) (*Block, error) {
	var block Block
	if err := c.rpcClient.CallContext(ctx, &block, "starknet_getBlockWithReceipts", blockID{BlockNumber: number}); err != nil {
		return nil, err
	}
	if block.BlockNumber != number {
		return nil, fmt.Errorf("block number mismatch: requested %d, got %d", number, block.BlockNumber)
	}
	return &block, nil
}
