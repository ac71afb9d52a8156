package felt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const primeHex = "0x800000000000011000000000000000000000000000000000000000000000001"

func TestFromBytesBigEndian(t *testing.T) {
	f, err := FromBytes([]byte{0x01, 0x02})
	require.NoError(t, err)
	require.Equal(t, "0x102", f.String())
	require.Equal(t, "0x"+strings.Repeat("0", 60)+"0102", f.Hex64())

	empty, err := FromBytes(nil)
	require.NoError(t, err)
	require.True(t, empty.IsZero())
}

func TestFromBytesRejectsOversized(t *testing.T) {
	_, err := FromBytes(make([]byte, 33))
	require.ErrorIs(t, err, ErrOversized)

	prime := MustHex(primeHex[:len(primeHex)-1] + "0")
	b := prime.Bytes()
	b[31] = 0x01
	_, err = FromBytes(b[:])
	require.ErrorIs(t, err, ErrOversized)

	allOnes := make([]byte, 32)
	for i := range allOnes {
		allOnes[i] = 0xff
	}
	_, err = FromBytes(allOnes)
	require.ErrorIs(t, err, ErrOversized)
}

func TestFromHex(t *testing.T) {
	f, err := FromHex("0X00ABC")
	require.NoError(t, err)
	require.Equal(t, "0xabc", f.String())

	_, err = FromHex(primeHex)
	require.ErrorIs(t, err, ErrOversized)

	_, err = FromHex("0x")
	require.ErrorIs(t, err, ErrInvalidHex)

	_, err = FromHex("0xzz")
	require.ErrorIs(t, err, ErrInvalidHex)

	_, err = FromHex("0x1" + strings.Repeat("0", 64))
	require.ErrorIs(t, err, ErrOversized)
}

func TestHex64LargestElement(t *testing.T) {
	largest := MustHex(primeHex[:len(primeHex)-1] + "0")
	require.Equal(t, "0x0800000000000011000000000000000000000000000000000000000000000000", largest.Hex64())
	require.Len(t, largest.Hex64(), 66)
}

func TestSelector(t *testing.T) {
	require.Equal(t,
		"0x0099cd8bde557814842a3121e8ddfd433a539b8c9f14bf31ebf108d12e6196e9",
		Selector("Transfer").Hex64(),
	)
	require.Equal(t,
		"0x015d40a3d6ca2ac30f4031e42be28da9b056fef9bb7357ac5e85627ee876e5ad",
		Selector("__execute__").Hex64(),
	)
}

func TestJSONText(t *testing.T) {
	var out struct {
		Keys []Felt `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"keys":["0x1","0x02ff"]}`), &out))
	require.Len(t, out.Keys, 2)
	require.True(t, out.Keys[0].Equal(FromUint64(1)))
	require.True(t, out.Keys[1].Equal(FromUint64(0x2ff)))

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, `{"keys":["0x1","0x2ff"]}`, string(encoded))
}
