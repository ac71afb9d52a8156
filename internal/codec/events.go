package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"merchantIndexer/internal/model"
)

// MarshalEvents encodes a starknet.v1.Events message.
func MarshalEvents(events *model.Events) []byte {
	var b []byte
	for _, mc := range events.MerchantContracts {
		var mb []byte
		if mc.MerchantAddress != "" {
			mb = protowire.AppendTag(mb, 1, protowire.BytesType)
			mb = protowire.AppendString(mb, mc.MerchantAddress)
		}
		if mc.PointsContract != "" {
			mb = protowire.AppendTag(mb, 2, protowire.BytesType)
			mb = protowire.AppendString(mb, mc.PointsContract)
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, mb)
	}
	return b
}

// UnmarshalEvents decodes a starknet.v1.Events message.
func UnmarshalEvents(b []byte) (*model.Events, error) {
	out := &model.Events{MerchantContracts: []model.MerchantContract{}}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		var mc model.MerchantContract
		err := walk(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if typ != protowire.BytesType || (num != 1 && num != 2) {
				return protowire.ConsumeFieldValue(num, typ, b), nil
			}
			s, n := protowire.ConsumeString(b)
			if num == 1 {
				mc.MerchantAddress = s
			} else {
				mc.PointsContract = s
			}
			return n, nil
		})
		if err != nil {
			return 0, err
		}
		out.MerchantContracts = append(out.MerchantContracts, mc)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
