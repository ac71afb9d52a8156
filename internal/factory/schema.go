package factory

import (
	"fmt"
	"io"

	"merchantIndexer/internal/felt"
)

var typeWidths = map[string]int{
	"core::felt252": 1,
	"core::bool":    1,
	"core::starknet::contract_address::ContractAddress": 1,
	"core::starknet::class_hash::ClassHash":             1,
	"core::integer::u8":   1,
	"core::integer::u16":  1,
	"core::integer::u32":  1,
	"core::integer::u64":  1,
	"core::integer::u128": 1,
	"core::integer::u256": 2,
}

// Field is one member of an event variant.
type Field struct {
	Name  string
	Type  string
	Width int
}

// Variant is a decodable event layout. KeyCount includes the selector key.
type Variant struct {
	Name      string
	Type      string
	Selector  felt.Felt
	Keys      []Field
	Data      []Field
	KeyCount  int
	DataCount int
}

// Schema maps event selectors to variant layouts.
type Schema struct {
	variants   []Variant
	bySelector map[[felt.Size]byte]int
}

// ParseSchema reads a Cairo ABI and flattens the given root event enum into
// a selector table. Flat variants contribute their inner enum's variants;
// nested variants pointing at a struct become entries keyed by the variant
// name's selector.
func ParseSchema(r io.Reader, root string) (*Schema, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read abi: %w", err)
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, err
	}
	events, err := indexEvents(entries)
	if err != nil {
		return nil, err
	}

	s := &Schema{bySelector: make(map[[felt.Size]byte]int)}
	if err := s.flatten(events, root, map[string]bool{}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) flatten(events map[string]AbiEntry, enumName string, visiting map[string]bool) error {
	entry, ok := events[enumName]
	if !ok {
		return fmt.Errorf("event enum %s not found", enumName)
	}
	if entry.Kind != "enum" {
		return fmt.Errorf("event %s is not an enum", enumName)
	}
	if visiting[enumName] {
		return fmt.Errorf("event enum %s is recursive", enumName)
	}
	visiting[enumName] = true
	defer delete(visiting, enumName)

	for _, variant := range entry.Variants {
		inner, ok := events[variant.Type]
		if !ok {
			return fmt.Errorf("variant %s: event %s not found", variant.Name, variant.Type)
		}

		switch variant.Kind {
		case "flat":
			if inner.Kind != "enum" {
				return fmt.Errorf("flat variant %s must reference an enum", variant.Name)
			}
			if err := s.flatten(events, inner.Name, visiting); err != nil {
				return err
			}
		case "nested":
			if inner.Kind != "struct" {
				// Nested enums carry one selector key per level; not decodable here.
				continue
			}
			v, err := buildVariant(variant.Name, inner)
			if err != nil {
				return err
			}
			if err := s.add(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("variant %s: unsupported kind %q", variant.Name, variant.Kind)
		}
	}
	return nil
}

func buildVariant(name string, entry AbiEntry) (Variant, error) {
	v := Variant{
		Name:     name,
		Type:     entry.Name,
		Selector: felt.Selector(name),
		KeyCount: 1,
	}
	for _, member := range entry.Members {
		width, ok := typeWidths[member.Type]
		if !ok {
			return Variant{}, fmt.Errorf("event %s member %s: unsupported type %s", name, member.Name, member.Type)
		}
		field := Field{Name: member.Name, Type: member.Type, Width: width}
		switch member.Kind {
		case "key":
			v.Keys = append(v.Keys, field)
			v.KeyCount += width
		case "data":
			v.Data = append(v.Data, field)
			v.DataCount += width
		default:
			return Variant{}, fmt.Errorf("event %s member %s: unsupported kind %q", name, member.Name, member.Kind)
		}
	}
	return v, nil
}

func (s *Schema) add(v Variant) error {
	key := v.Selector.Bytes()
	if idx, ok := s.bySelector[key]; ok {
		return fmt.Errorf("selector collision between %s and %s", s.variants[idx].Name, v.Name)
	}
	s.bySelector[key] = len(s.variants)
	s.variants = append(s.variants, v)
	return nil
}

// Lookup finds the variant for a selector.
func (s *Schema) Lookup(selector felt.Felt) (Variant, bool) {
	idx, ok := s.bySelector[selector.Bytes()]
	if !ok {
		return Variant{}, false
	}
	return s.variants[idx], true
}

// Variants returns the table in ABI declaration order.
func (s *Schema) Variants() []Variant {
	out := make([]Variant, len(s.variants))
	copy(out, s.variants)
	return out
}
