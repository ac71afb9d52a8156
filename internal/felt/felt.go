// Package felt implements the Starknet scalar field element.
package felt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the width of a big-endian encoded field element.
const Size = fp.Bytes

var (
	// ErrOversized is returned when input does not fit in the field.
	ErrOversized = errors.New("value does not fit in field element")
	// ErrInvalidHex is returned for malformed hex input.
	ErrInvalidHex = errors.New("invalid hex field element")
)

var modulus = fp.Modulus()

// Felt is an element of the Stark prime field.
type Felt struct {
	v fp.Element
}

// Zero is the additive identity.
var Zero Felt

// FromUint64 converts a uint64 into a field element.
func FromUint64(u uint64) Felt {
	var f Felt
	f.v.SetUint64(u)
	return f
}

// FromBytes parses a big-endian byte slice. Inputs wider than Size bytes or
// values not below the field modulus are rejected rather than reduced.
func FromBytes(b []byte) (Felt, error) {
	if len(b) > Size {
		return Felt{}, fmt.Errorf("%w: %d bytes", ErrOversized, len(b))
	}
	return fromBig(new(big.Int).SetBytes(b))
}

// FromHex parses a hex string with an optional 0x prefix.
func FromHex(s string) (Felt, error) {
	digits := strings.TrimSpace(s)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	if len(digits) > 2*Size {
		return Felt{}, fmt.Errorf("%w: %d hex digits", ErrOversized, len(digits))
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Felt{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return FromBytes(raw)
}

// FromBig converts a non-negative big integer.
func FromBig(v *big.Int) (Felt, error) {
	if v.Sign() < 0 {
		return Felt{}, fmt.Errorf("%w: negative value", ErrOversized)
	}
	return fromBig(v)
}

func fromBig(v *big.Int) (Felt, error) {
	if v.Cmp(modulus) >= 0 {
		return Felt{}, fmt.Errorf("%w: %s exceeds field modulus", ErrOversized, hexutil.EncodeBig(v))
	}
	var f Felt
	f.v.SetBigInt(v)
	return f, nil
}

// MustHex is FromHex for constants and tests.
func MustHex(s string) Felt {
	f, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Bytes returns the 32-byte big-endian encoding.
func (f Felt) Bytes() [Size]byte {
	return f.v.Bytes()
}

// BigInt returns the value as a new big integer.
func (f Felt) BigInt() *big.Int {
	return f.v.BigInt(new(big.Int))
}

// Hex64 formats the element as 0x followed by exactly 64 lowercase hex digits.
func (f Felt) Hex64() string {
	b := f.Bytes()
	return hexutil.Encode(b[:])
}

// String formats the element as compact 0x-prefixed hex.
func (f Felt) String() string {
	return "0x" + f.v.Text(16)
}

func (f Felt) Equal(other Felt) bool {
	return f.v.Equal(&other.v)
}

func (f Felt) IsZero() bool {
	return f.v.IsZero()
}

// MarshalText encodes the element as compact hex, the Starknet RPC form.
func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a hex string.
func (f *Felt) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// StarknetKeccak is keccak256 truncated to its low 250 bits.
func StarknetKeccak(data []byte) Felt {
	h := crypto.Keccak256(data)
	h[0] &= 0x03
	var f Felt
	f.v.SetBytes(h)
	return f
}

// Selector returns the event or entrypoint selector for a name.
func Selector(name string) Felt {
	return StarknetKeccak([]byte(name))
}
