package codec

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"merchantIndexer/internal/model"
)

func TestTransactionsWireRoundTripKeepsMissingReceipt(t *testing.T) {
	batch := &model.Transactions{
		BlockNumber: 812345,
		BlockHash:   hexutil.Bytes{0xaa, 0xbb},
		TransactionsWithReceipt: []model.TransactionWithReceipt{
			{
				Hash: hexutil.Bytes{0x01},
				Receipt: &model.Receipt{Events: []model.Event{{
					FromAddress: hexutil.Bytes{0x06, 0xc0},
					Keys:        []hexutil.Bytes{{0x01}, {0x02}},
					Data:        []hexutil.Bytes{{0x03}},
				}}},
			},
			{Hash: hexutil.Bytes{0x02}, Receipt: &model.Receipt{}},
			{Hash: hexutil.Bytes{0x03}},
		},
	}

	decoded, err := UnmarshalTransactions(MarshalTransactions(batch))
	require.NoError(t, err)
	require.Equal(t, batch.BlockNumber, decoded.BlockNumber)
	require.Equal(t, batch.BlockHash, decoded.BlockHash)
	require.Len(t, decoded.TransactionsWithReceipt, 3)

	first := decoded.TransactionsWithReceipt[0]
	require.NotNil(t, first.Receipt)
	require.Equal(t, batch.TransactionsWithReceipt[0].Receipt.Events, first.Receipt.Events)

	require.NotNil(t, decoded.TransactionsWithReceipt[1].Receipt)
	require.Empty(t, decoded.TransactionsWithReceipt[1].Receipt.Events)
	require.Nil(t, decoded.TransactionsWithReceipt[2].Receipt)
}

func TestUnmarshalTransactionsSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 5)
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("ignored"))

	decoded, err := UnmarshalTransactions(b)
	require.NoError(t, err)
	require.Equal(t, uint64(5), decoded.BlockNumber)
	require.Empty(t, decoded.TransactionsWithReceipt)
}

func TestUnmarshalTransactionsTruncated(t *testing.T) {
	encoded := MarshalTransactions(&model.Transactions{
		TransactionsWithReceipt: []model.TransactionWithReceipt{{Hash: hexutil.Bytes{0x01, 0x02, 0x03}}},
	})

	_, err := UnmarshalTransactions(encoded[:len(encoded)-1])
	require.ErrorIs(t, err, ErrMalformed)
}

func TestMarshalEventsWireFormat(t *testing.T) {
	encoded := MarshalEvents(&model.Events{MerchantContracts: []model.MerchantContract{
		{MerchantAddress: "0x1", PointsContract: "0x2"},
	}})

	want := []byte{0x0a, 0x0a, 0x0a, 0x03, '0', 'x', '1', 0x12, 0x03, '0', 'x', '2'}
	require.Equal(t, want, encoded)

	decoded, err := UnmarshalEvents(encoded)
	require.NoError(t, err)
	require.Equal(t, []model.MerchantContract{{MerchantAddress: "0x1", PointsContract: "0x2"}}, decoded.MerchantContracts)
}

func TestUnmarshalEventsEmpty(t *testing.T) {
	decoded, err := UnmarshalEvents(nil)
	require.NoError(t, err)
	require.NotNil(t, decoded.MerchantContracts)
	require.Empty(t, decoded.MerchantContracts)
}
