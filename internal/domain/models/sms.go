package models

import "time"

// DeliveryStatus enumerates SMS delivery outcomes.
type DeliveryStatus string

const (
	SmsDelivered DeliveryStatus = "DELIVERED"
	SmsFailed    DeliveryStatus = "FAILED"
)

// SmsLog is one notification recorded against a market's ledger. FarmerName
// and Phone are snapshots taken at send time, not references, so the log
// stays accurate if the farmer record later changes. Logs are append-only.
type SmsLog struct {
	ID         string         `json:"id"`
	MarketID   string         `json:"marketId"`
	FarmerName string         `json:"farmerName"`
	Phone      string         `json:"phone"`
	Message    string         `json:"message"`
	Timestamp  time.Time      `json:"timestamp"`
	Status     DeliveryStatus `json:"status"`
}
