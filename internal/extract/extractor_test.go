package extract

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"merchantIndexer/internal/felt"
	"merchantIndexer/internal/model"
)

func feltBytes(f felt.Felt) hexutil.Bytes {
	b := f.Bytes()
	return b[:]
}

func factoryAddress() hexutil.Bytes {
	return feltBytes(felt.MustHex(DefaultFactoryAddress))
}

func merchantCreated(from hexutil.Bytes, merchant, points uint64) model.Event {
	return model.Event{
		FromAddress: from,
		Keys:        []hexutil.Bytes{feltBytes(felt.Selector("MerchantCreated")), feltBytes(felt.FromUint64(merchant))},
		Data:        []hexutil.Bytes{feltBytes(felt.FromUint64(points))},
	}
}

func batchOf(receipts ...*model.Receipt) *model.Transactions {
	batch := &model.Transactions{}
	for _, r := range receipts {
		batch.TransactionsWithReceipt = append(batch.TransactionsWithReceipt, model.TransactionWithReceipt{Receipt: r})
	}
	return batch
}

func newTestExtractor(t *testing.T, addresses ...string) *Extractor {
	t.Helper()
	x, err := NewExtractor(Config{Addresses: addresses}, nil)
	require.NoError(t, err)
	return x
}

func pad64(hexDigits string) string {
	return "0x" + strings.Repeat("0", 64-len(hexDigits)) + hexDigits
}

func TestMapMerchantCreated(t *testing.T) {
	x := newTestExtractor(t)

	out, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{merchantCreated(factoryAddress(), 1, 2)}}))
	require.NoError(t, err)
	require.Equal(t, []model.MerchantContract{{
		MerchantAddress: pad64("1"),
		PointsContract:  pad64("2"),
	}}, out.MerchantContracts)
}

func TestMapOtherAddress(t *testing.T) {
	x := newTestExtractor(t)

	other := feltBytes(felt.FromUint64(0xdead))
	out, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{merchantCreated(other, 1, 2)}}))
	require.NoError(t, err)
	require.Empty(t, out.MerchantContracts)
	require.NotNil(t, out.MerchantContracts)
}

func TestMapMissingReceipt(t *testing.T) {
	x := newTestExtractor(t)

	batch := batchOf(
		&model.Receipt{Events: []model.Event{merchantCreated(factoryAddress(), 1, 2)}},
		nil,
	)
	out, err := x.Map(batch)
	require.ErrorIs(t, err, ErrMissingReceipt)
	require.Nil(t, out)
}

func TestMapShortFromAddressMatches(t *testing.T) {
	x := newTestExtractor(t, "0x123")

	// Leading zero bytes may be stripped upstream.
	out, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{merchantCreated(hexutil.Bytes{0x01, 0x23}, 3, 4)}}))
	require.NoError(t, err)
	require.Len(t, out.MerchantContracts, 1)
}

func TestMapDiscardsRoutineEvents(t *testing.T) {
	x := newTestExtractor(t)
	from := factoryAddress()

	events := []model.Event{
		{
			FromAddress: from,
			Keys:        []hexutil.Bytes{feltBytes(felt.Selector("Transfer")), feltBytes(felt.FromUint64(1))},
			Data:        []hexutil.Bytes{feltBytes(felt.FromUint64(2))},
		},
		{
			FromAddress: from,
			Keys:        []hexutil.Bytes{feltBytes(felt.Selector("MerchantCreated")), feltBytes(felt.FromUint64(1))},
		},
		{
			FromAddress: from,
			Keys:        []hexutil.Bytes{feltBytes(felt.Selector("Paused"))},
			Data:        []hexutil.Bytes{feltBytes(felt.FromUint64(9))},
		},
		{
			FromAddress: from,
		},
	}

	out, stats, err := x.Extract(batchOf(&model.Receipt{Events: events}))
	require.NoError(t, err)
	require.Empty(t, out.MerchantContracts)
	require.Equal(t, Stats{Transactions: 1, Events: 4, Matched: 4, Undecoded: 3, OtherVariant: 1}, stats)
}

func TestMapOrderAndIdempotence(t *testing.T) {
	x := newTestExtractor(t)
	from := factoryAddress()
	other := feltBytes(felt.FromUint64(0xbeef))

	batch := batchOf(
		&model.Receipt{Events: []model.Event{
			merchantCreated(from, 10, 11),
			merchantCreated(other, 99, 99),
			merchantCreated(from, 20, 21),
		}},
		&model.Receipt{},
		&model.Receipt{Events: []model.Event{merchantCreated(from, 30, 31)}},
	)

	first, err := x.Map(batch)
	require.NoError(t, err)
	require.Equal(t, []model.MerchantContract{
		{MerchantAddress: pad64("a"), PointsContract: pad64("b")},
		{MerchantAddress: pad64("14"), PointsContract: pad64("15")},
		{MerchantAddress: pad64("1e"), PointsContract: pad64("1f")},
	}, first.MerchantContracts)

	second, err := x.Map(batch)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMapOversizedScalarIsFatal(t *testing.T) {
	x := newTestExtractor(t)

	event := merchantCreated(factoryAddress(), 1, 2)
	event.Data = []hexutil.Bytes{make([]byte, 33)}

	_, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{event}}))
	require.ErrorIs(t, err, felt.ErrOversized)

	// The same oversized payload from another contract is never parsed.
	event.FromAddress = feltBytes(felt.FromUint64(1))
	out, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{event}}))
	require.NoError(t, err)
	require.Empty(t, out.MerchantContracts)
}

func TestMultipleTargets(t *testing.T) {
	x := newTestExtractor(t, "0x"+strings.ToUpper(DefaultFactoryAddress), "0x123")

	out, err := x.Map(batchOf(&model.Receipt{Events: []model.Event{
		merchantCreated(factoryAddress(), 1, 2),
		merchantCreated(feltBytes(felt.FromUint64(0x123)), 3, 4),
		merchantCreated(feltBytes(felt.FromUint64(0x124)), 5, 6),
	}}))
	require.NoError(t, err)
	require.Len(t, out.MerchantContracts, 2)
	require.Equal(t, pad64("3"), out.MerchantContracts[1].MerchantAddress)
}

func TestNewExtractorInvalidAddress(t *testing.T) {
	_, err := NewExtractor(Config{Addresses: []string{"0xnothex"}}, nil)
	require.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0x6C0B75D53C757CC1979D3AAA9482AC449AE0DFD1E5A9807B24478CF4DA2D5F8")
	require.NoError(t, err)
	require.Equal(t, DefaultFactoryAddress, got)
	require.Len(t, got, 64)
}
