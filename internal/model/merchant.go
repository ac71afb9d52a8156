package model

// MerchantContract is a merchant account and its points contract, both as
// 0x-prefixed 64-digit hex.
type MerchantContract struct {
	MerchantAddress string `json:"merchant_address"`
	PointsContract  string `json:"points_contract"`
}

// Events is the output of one mapped batch.
type Events struct {
	MerchantContracts []MerchantContract `json:"merchant_contracts"`
}
