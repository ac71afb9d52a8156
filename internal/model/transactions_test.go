package model

import (
	"encoding/json"
	"testing"
)

func TestTransactionsJSONMissingReceipt(t *testing.T) {
	input := `{
		"block_number": 812345,
		"transactions_with_receipt": [
			{"hash": "0x0a", "receipt": {"events": [{"from_address": "0x06c0", "keys": ["0x01", "0x02"], "data": []}]}},
			{"hash": "0x0b"}
		]
	}`

	var batch Transactions
	if err := json.Unmarshal([]byte(input), &batch); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if batch.BlockNumber != 812345 {
		t.Fatalf("block number mismatch: %d", batch.BlockNumber)
	}
	if len(batch.TransactionsWithReceipt) != 2 {
		t.Fatalf("transactions mismatch: %d", len(batch.TransactionsWithReceipt))
	}

	first := batch.TransactionsWithReceipt[0]
	if first.Receipt == nil || len(first.Receipt.Events) != 1 {
		t.Fatalf("first receipt mismatch: %+v", first.Receipt)
	}
	event := first.Receipt.Events[0]
	if len(event.FromAddress) != 2 || event.FromAddress[0] != 0x06 || event.FromAddress[1] != 0xc0 {
		t.Fatalf("from_address mismatch: %x", []byte(event.FromAddress))
	}
	if len(event.Keys) != 2 || len(event.Data) != 0 {
		t.Fatalf("keys/data mismatch: %+v", event)
	}

	if batch.TransactionsWithReceipt[1].Receipt != nil {
		t.Fatalf("second receipt should be nil")
	}
}

func TestMerchantContractJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(MerchantContract{MerchantAddress: "0x01", PointsContract: "0x02"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["merchant_address"] != "0x01" {
		t.Fatalf("merchant_address missing: %s", data)
	}
	if decoded["points_contract"] != "0x02" {
		t.Fatalf("points_contract missing: %s", data)
	}
}
