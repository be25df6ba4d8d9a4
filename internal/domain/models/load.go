package models

import "time"

// QualityGrade enumerates produce quality grades assigned at intake.
type QualityGrade string

const (
	GradeA QualityGrade = "A"
	GradeB QualityGrade = "B"
	GradeC QualityGrade = "C"
)

// Valid reports whether the grade is one of the known values.
func (g QualityGrade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC:
		return true
	}
	return false
}

// LoadStatus enumerates the lifecycle states of a crop load.
type LoadStatus string

const (
	LoadPending LoadStatus = "PENDING"
	LoadSold    LoadStatus = "SOLD"
)

// CropLoad is a single intake of produce from a farmer. A load is created
// PENDING and mutated exactly once: the settlement flips it to SOLD
// together with the creation of its Sale.
type CropLoad struct {
	ID       string       `json:"id"`
	FarmerID string       `json:"farmerId"`
	MarketID string       `json:"marketId"`
	Crop     string       `json:"crop"`
	Quantity float64      `json:"quantity"` // kg
	Grade    QualityGrade `json:"grade"`
	Date     time.Time    `json:"date"`
	Status   LoadStatus   `json:"status"`
}
