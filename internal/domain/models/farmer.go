package models

// Farmer is a registered producer attached to one market. Records are
// append-only once registered; the core never updates them.
type Farmer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Village     string `json:"village"`
	PrimaryCrop string `json:"primaryCrop"`
	MarketID    string `json:"marketId"`
}
