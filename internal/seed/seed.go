// Package seed loads the market reference data and, when enabled, the demo
// fixtures the dashboard ships with.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
)

// Markets returns the Tamil Nadu market reference list.
func Markets() []models.Market {
	return []models.Market{
		{ID: "M001", Name: "Salem (Dhadagapatti)", District: "Salem"},
		{ID: "M002", Name: "Coimbatore (R.S. Puram)", District: "Coimbatore"},
		{ID: "M003", Name: "Madurai (Anna Nagar)", District: "Madurai"},
		{ID: "M004", Name: "Trichy (Gandhi Market)", District: "Trichy"},
		{ID: "M005", Name: "Chennai (Koyambedu)", District: "Chennai"},
		{ID: "M006", Name: "Hosur Uzhavar Sandhai", District: "Krishnagiri"},
	}
}

// DemoFarmers returns the demo farmer fixtures.
func DemoFarmers() []models.Farmer {
	return []models.Farmer{
		{ID: "F001", Name: "Ravi Kumar", Phone: "9876543210", Village: "Soolagiri", PrimaryCrop: "Tomato", MarketID: "M001"},
		{ID: "F002", Name: "Lakshmi Narayanan", Phone: "9845678901", Village: "Kelamangalam", PrimaryCrop: "Carrot", MarketID: "M001"},
		{ID: "F003", Name: "Muthu Swamy", Phone: "9123456789", Village: "Bargur", PrimaryCrop: "Beans", MarketID: "M002"},
		{ID: "F004", Name: "Anitha Selvam", Phone: "9988776655", Village: "Omalur", PrimaryCrop: "Onion", MarketID: "M001"},
	}
}

// DemoLoads returns the demo crop load fixtures. L101 and L103 enter
// PENDING and are settled by the demo sales below.
func DemoLoads() []models.CropLoad {
	arrival := time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)
	return []models.CropLoad{
		{ID: "L101", FarmerID: "F001", MarketID: "M001", Crop: "Tomato", Quantity: 250, Grade: models.GradeA, Date: arrival, Status: models.LoadPending},
		{ID: "L102", FarmerID: "F002", MarketID: "M001", Crop: "Carrot", Quantity: 150, Grade: models.GradeB, Date: arrival, Status: models.LoadPending},
		{ID: "L103", FarmerID: "F004", MarketID: "M001", Crop: "Onion", Quantity: 500, Grade: models.GradeA, Date: arrival, Status: models.LoadPending},
	}
}

// DemoSales returns the demo settlement fixtures.
func DemoSales() []models.Sale {
	return []models.Sale{
		{
			ID: "S201", LoadID: "L101", FarmerID: "F001", MarketID: "M001",
			PricePerUnit: decimal.NewFromInt(35),
			BuyerName:    "Zomato Hyperpure",
			TotalAmount:  decimal.NewFromInt(8750),
			Deductions:   decimal.NewFromFloat(437.5),
			NetAmount:    decimal.NewFromFloat(8312.5),
			Timestamp:    time.Date(2023, 10, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			ID: "S202", LoadID: "L103", FarmerID: "F004", MarketID: "M001",
			PricePerUnit: decimal.NewFromInt(42),
			BuyerName:    "BigBasket",
			TotalAmount:  decimal.NewFromInt(21000),
			Deductions:   decimal.NewFromInt(1050),
			NetAmount:    decimal.NewFromInt(19950),
			Timestamp:    time.Date(2023, 10, 24, 11, 15, 0, 0, time.UTC),
		},
	}
}

// Apply loads the market list and, when demo is set, the demo fixtures.
// Entities that already exist (a restarted process over a persistent
// ledger) are left untouched.
func Apply(ctx context.Context, l ledger.Ledger, demo bool) error {
	for _, market := range Markets() {
		if err := l.AddMarket(ctx, market); err != nil && !errors.Is(err, models.ErrInvalidState) {
			return err
		}
	}
	if !demo {
		return nil
	}

	for _, farmer := range DemoFarmers() {
		if err := l.AddFarmer(ctx, farmer); err != nil && !errors.Is(err, models.ErrInvalidState) {
			return err
		}
	}
	for _, load := range DemoLoads() {
		if err := l.AddLoad(ctx, load); err != nil && !errors.Is(err, models.ErrInvalidState) {
			return err
		}
	}
	for _, sale := range DemoSales() {
		if err := l.SettleLoad(ctx, sale); err != nil && !errors.Is(err, models.ErrInvalidState) {
			return err
		}
	}
	return nil
}
