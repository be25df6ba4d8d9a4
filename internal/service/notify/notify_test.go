package notify

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
)

func fixtureSale() (models.Farmer, models.Sale, models.CropLoad) {
	farmer := models.Farmer{ID: "F001", Name: "Ravi Kumar", Phone: "9876543210", MarketID: "M001"}
	load := models.CropLoad{
		ID: "L101", FarmerID: "F001", MarketID: "M001",
		Crop: "Tomato", Quantity: 250, Grade: models.GradeA, Status: models.LoadSold,
	}
	sale := models.Sale{
		ID: "S201", LoadID: "L101", FarmerID: "F001", MarketID: "M001",
		PricePerUnit: decimal.NewFromInt(35),
		BuyerName:    "Zomato Hyperpure",
		TotalAmount:  decimal.NewFromInt(8750),
		Deductions:   decimal.NewFromFloat(437.5),
		NetAmount:    decimal.NewFromFloat(8312.5),
	}
	return farmer, sale, load
}

func TestFormatSaleNotice(t *testing.T) {
	farmer, sale, load := fixtureSale()

	got := FormatSaleNotice(farmer, sale, load)
	want := "Uzhavar360: Hi Ravi Kumar, your 250kg of Tomato (Grade A) has been sold for ₹35/kg. Total: ₹8750. Deductions: ₹437.5. Net Amount: ₹8312.5 will be credited shortly."
	if got != want {
		t.Fatalf("FormatSaleNotice:\n got  %q\n want %q", got, want)
	}
}

func TestFormatSaleNoticeTrimsTrailingZeros(t *testing.T) {
	farmer, sale, load := fixtureSale()
	// Amounts carrying a fractional exponent must render like the plain
	// numbers in the reference messages.
	sale.Deductions = decimal.New(43750, -2) // 437.50
	sale.NetAmount = decimal.New(831250, -2) // 8312.50

	got := FormatSaleNotice(farmer, sale, load)
	want := "Uzhavar360: Hi Ravi Kumar, your 250kg of Tomato (Grade A) has been sold for ₹35/kg. Total: ₹8750. Deductions: ₹437.5. Net Amount: ₹8312.5 will be credited shortly."
	if got != want {
		t.Fatalf("FormatSaleNotice:\n got  %q\n want %q", got, want)
	}
}

func TestFormatSaleNoticeDeterministic(t *testing.T) {
	farmer, sale, load := fixtureSale()
	first := FormatSaleNotice(farmer, sale, load)
	for i := 0; i < 10; i++ {
		if got := FormatSaleNotice(farmer, sale, load); got != first {
			t.Fatalf("output changed across calls: %q vs %q", got, first)
		}
	}
}

func TestFormatDailySummary(t *testing.T) {
	farmer := models.Farmer{ID: "F004", Name: "Anitha Selvam", Phone: "9988776655", MarketID: "M001"}

	got := FormatDailySummary(farmer, decimal.NewFromFloat(19950))
	want := "Uzhavar360: Daily Summary for Anitha Selvam. Total earnings today: ₹19950. Thank you for using Uzhavar360."
	if got != want {
		t.Fatalf("FormatDailySummary:\n got  %q\n want %q", got, want)
	}
}

func TestRecordSaleNoticeAppendsDeliveredLog(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryLedger()
	if err := store.AddMarket(ctx, models.Market{ID: "M001"}); err != nil {
		t.Fatalf("AddMarket: %v", err)
	}

	svc := NewService(store, nil)
	svc.now = func() time.Time { return time.Date(2023, 10, 24, 10, 30, 0, 0, time.UTC) }

	farmer, sale, load := fixtureSale()
	entry, err := svc.RecordSaleNotice(ctx, farmer, sale, load)
	if err != nil {
		t.Fatalf("RecordSaleNotice: %v", err)
	}

	if entry.Status != models.SmsDelivered {
		t.Fatalf("status = %s, want DELIVERED", entry.Status)
	}
	if entry.FarmerName != "Ravi Kumar" || entry.Phone != "9876543210" {
		t.Fatalf("farmer snapshot missing: %+v", entry)
	}

	logs, err := store.ListSmsLogs(ctx, "M001")
	if err != nil {
		t.Fatalf("ListSmsLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != entry.ID {
		t.Fatalf("expected the recorded log on the ledger, got %v", logs)
	}
}
