package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the settlement record for one crop load. Created exactly once per
// load and immutable thereafter; there is no edit or cancel operation.
//
// Derived-field invariants: TotalAmount = quantity x PricePerUnit,
// Deductions = TotalAmount x fee rate, NetAmount = TotalAmount - Deductions.
type Sale struct {
	ID           string          `json:"id"`
	LoadID       string          `json:"loadId"`
	FarmerID     string          `json:"farmerId"`
	MarketID     string          `json:"marketId"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	BuyerName    string          `json:"buyerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetAmount    decimal.Decimal `json:"netAmount"`
	Timestamp    time.Time       `json:"timestamp"`
}

// MoneyString renders a monetary amount without trailing fractional zeros,
// so 437.50 prints as "437.5" and 21000.00 as "21000".
func MoneyString(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
