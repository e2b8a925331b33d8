package dto

import "github.com/shopspring/decimal"

// 金額はJSONでは数値（"139.98" ではなく 139.98）で送る
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
