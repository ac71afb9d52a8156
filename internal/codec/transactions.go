// Package codec reads and writes the protobuf wire form of the substreams
// input and output messages defined under proto/.
package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"merchantIndexer/internal/model"
)

// ErrMalformed is returned for truncated or invalid wire data.
var ErrMalformed = errors.New("malformed protobuf message")

// UnmarshalTransactions decodes a sf.substreams.starknet.type.v1.Transactions message.
func UnmarshalTransactions(b []byte) (*model.Transactions, error) {
	out := &model.Transactions{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			out.BlockNumber = v
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			out.BlockHash = clone(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			tx, err := unmarshalTransaction(v)
			if err != nil {
				return 0, fmt.Errorf("transaction %d: %w", len(out.TransactionsWithReceipt), err)
			}
			out.TransactionsWithReceipt = append(out.TransactionsWithReceipt, tx)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func unmarshalTransaction(b []byte) (model.TransactionWithReceipt, error) {
	var tx model.TransactionWithReceipt
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			tx.Hash = clone(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			receipt, err := unmarshalReceipt(v)
			if err != nil {
				return 0, fmt.Errorf("receipt: %w", err)
			}
			tx.Receipt = receipt
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return tx, err
}

func unmarshalReceipt(b []byte) (*model.Receipt, error) {
	receipt := &model.Receipt{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			event, err := unmarshalEvent(v)
			if err != nil {
				return 0, fmt.Errorf("event %d: %w", len(receipt.Events), err)
			}
			receipt.Events = append(receipt.Events, event)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func unmarshalEvent(b []byte) (model.Event, error) {
	var event model.Event
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType || num < 1 || num > 3 {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		switch num {
		case 1:
			event.FromAddress = clone(v)
		case 2:
			event.Keys = append(event.Keys, clone(v))
		case 3:
			event.Data = append(event.Data, clone(v))
		}
		return n, nil
	})
	return event, err
}

// MarshalTransactions encodes a batch as a Transactions message.
func MarshalTransactions(batch *model.Transactions) []byte {
	var b []byte
	if batch.BlockNumber != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, batch.BlockNumber)
	}
	if len(batch.BlockHash) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, batch.BlockHash)
	}
	for _, tx := range batch.TransactionsWithReceipt {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalTransaction(tx))
	}
	return b
}

func marshalTransaction(tx model.TransactionWithReceipt) []byte {
	var b []byte
	if len(tx.Hash) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, tx.Hash)
	}
	if tx.Receipt != nil {
		var rb []byte
		for _, event := range tx.Receipt.Events {
			rb = protowire.AppendTag(rb, 1, protowire.BytesType)
			rb = protowire.AppendBytes(rb, marshalEvent(event))
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	return b
}

func marshalEvent(event model.Event) []byte {
	var b []byte
	if len(event.FromAddress) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, event.FromAddress)
	}
	for _, key := range event.Keys {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, key)
	}
	for _, data := range event.Data {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, data)
	}
	return b
}

// walk iterates the fields of a message. fn consumes the value of one field
// and returns the number of bytes read, or a negative protowire error code.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
