package factory

import (
	"errors"
	"fmt"

	"merchantIndexer/internal/felt"
)

var (
	// ErrUnknownSelector is returned when the first key matches no variant.
	ErrUnknownSelector = errors.New("unknown event selector")
	// ErrLayoutMismatch is returned when key or data counts differ from the variant layout.
	ErrLayoutMismatch = errors.New("event layout mismatch")
)

// EmittedEvent is a typed view of one event record. Block context is absent
// when the event was taken from an already extracted receipt.
type EmittedEvent struct {
	FromAddress     felt.Felt
	Keys            []felt.Felt
	Data            []felt.Felt
	BlockHash       *felt.Felt
	BlockNumber     *uint64
	TransactionHash felt.Felt
}

// Decoder decodes emitted events against a schema.
type Decoder struct {
	schema *Schema
}

// NewDecoder builds a decoder for the factory contract ABI.
func NewDecoder() (*Decoder, error) {
	schema, err := FactorySchema()
	if err != nil {
		return nil, err
	}
	return NewDecoderWithSchema(schema), nil
}

func NewDecoderWithSchema(schema *Schema) *Decoder {
	return &Decoder{schema: schema}
}

// CanDecode checks if the selector is known.
func (d *Decoder) CanDecode(selector felt.Felt) bool {
	_, ok := d.schema.Lookup(selector)
	return ok
}

// Decode resolves the variant from the first key and splits the remaining
// keys and data into its members.
func (d *Decoder) Decode(ev EmittedEvent) (Event, error) {
	if len(ev.Keys) == 0 {
		return nil, fmt.Errorf("%w: no keys", ErrUnknownSelector)
	}
	variant, ok := d.schema.Lookup(ev.Keys[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSelector, ev.Keys[0])
	}
	if len(ev.Keys) != variant.KeyCount || len(ev.Data) != variant.DataCount {
		return nil, fmt.Errorf("%w: %s expects %d keys and %d data, got %d and %d",
			ErrLayoutMismatch, variant.Name, variant.KeyCount, variant.DataCount, len(ev.Keys), len(ev.Data))
	}

	values := make(Values, len(variant.Keys)+len(variant.Data))
	splitFields(values, variant.Keys, ev.Keys[1:])
	splitFields(values, variant.Data, ev.Data)

	build, ok := constructors[variant.Name]
	if !ok {
		return Generic{Name: variant.Name, Fields: values}, nil
	}
	return build(values)
}

func splitFields(values Values, fields []Field, felts []felt.Felt) {
	offset := 0
	for _, field := range fields {
		values[field.Name] = felts[offset : offset+field.Width]
		offset += field.Width
	}
}
