package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
)

func seedStore(t *testing.T) *ledger.MemoryLedger {
	t.Helper()
	ctx := context.Background()
	store := ledger.NewMemoryLedger()

	if err := store.AddMarket(ctx, models.Market{ID: "M001", Name: "Salem (Dhadagapatti)", District: "Salem"}); err != nil {
		t.Fatalf("AddMarket: %v", err)
	}
	if err := store.AddFarmer(ctx, models.Farmer{ID: "F001", Name: "Ravi Kumar", Phone: "9876543210", MarketID: "M001"}); err != nil {
		t.Fatalf("AddFarmer: %v", err)
	}
	if err := store.AddLoad(ctx, models.CropLoad{
		ID: "L101", FarmerID: "F001", MarketID: "M001",
		Crop: "Tomato", Quantity: 250, Grade: models.GradeA, Status: models.LoadPending,
	}); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	if err := store.SettleLoad(ctx, models.Sale{
		ID: "S201", LoadID: "L101", FarmerID: "F001", MarketID: "M001",
		PricePerUnit: decimal.NewFromInt(35),
		BuyerName:    "Zomato Hyperpure",
		TotalAmount:  decimal.NewFromInt(8750),
		Deductions:   decimal.NewFromFloat(437.5),
		NetAmount:    decimal.NewFromFloat(8312.5),
		Timestamp:    time.Date(2023, 10, 24, 10, 30, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SettleLoad: %v", err)
	}
	return store
}

func TestWriteCSVHeaderAndRow(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, nil)

	var buf bytes.Buffer
	if err := svc.WriteCSV(context.Background(), "M001", &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}

	wantHeader := []string{"Farmer", "Crop", "Qty (kg)", "Buyer", "Net Amount (₹)", "Timestamp"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	row := records[1]
	if len(row) != 6 {
		t.Fatalf("row has %d fields, want 6", len(row))
	}
	want := []string{"Ravi Kumar", "Tomato", "250", "Zomato Hyperpure", "8312.5", "24/10/2023, 10:30:00"}
	for i, col := range want {
		if row[i] != col {
			t.Errorf("row[%d] = %q, want %q", i, row[i], col)
		}
	}
}

func TestWriteCSVLineCount(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	// A second settled load for the same market.
	if err := store.AddLoad(ctx, models.CropLoad{
		ID: "L103", FarmerID: "F001", MarketID: "M001",
		Crop: "Onion", Quantity: 500, Grade: models.GradeA, Status: models.LoadPending,
	}); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	if err := store.SettleLoad(ctx, models.Sale{
		ID: "S202", LoadID: "L103", FarmerID: "F001", MarketID: "M001",
		BuyerName: "BigBasket",
		NetAmount: decimal.NewFromFloat(19950),
		Timestamp: time.Date(2023, 10, 24, 11, 15, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SettleLoad: %v", err)
	}

	var buf bytes.Buffer
	if err := NewService(store, nil, nil).WriteCSV(ctx, "M001", &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
}

func TestWriteCSVQuotesEmbeddedCommas(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	if err := store.AddLoad(ctx, models.CropLoad{
		ID: "L104", FarmerID: "F001", MarketID: "M001",
		Crop: "Carrot", Quantity: 100, Grade: models.GradeB, Status: models.LoadPending,
	}); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	if err := store.SettleLoad(ctx, models.Sale{
		ID: "S203", LoadID: "L104", FarmerID: "F001", MarketID: "M001",
		BuyerName: "Sharma, Sons & Co",
		NetAmount: decimal.NewFromInt(950),
		Timestamp: time.Date(2023, 10, 24, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SettleLoad: %v", err)
	}

	var buf bytes.Buffer
	if err := NewService(store, nil, nil).WriteCSV(ctx, "M001", &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	if !strings.Contains(buf.String(), `"Sharma, Sons & Co"`) {
		t.Fatalf("buyer with comma not quoted:\n%s", buf.String())
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	for i, rec := range records {
		if len(rec) != 6 {
			t.Fatalf("record %d has %d fields, want 6", i, len(rec))
		}
	}
}

func TestWriteCSVUnknownReferences(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryLedger()
	if err := store.AddMarket(ctx, models.Market{ID: "M001", District: "Salem"}); err != nil {
		t.Fatalf("AddMarket: %v", err)
	}
	if err := store.AddLoad(ctx, models.CropLoad{
		ID: "L900", FarmerID: "F900", MarketID: "M001",
		Crop: "Beans", Quantity: 10, Grade: models.GradeC, Status: models.LoadPending,
	}); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	if err := store.SettleLoad(ctx, models.Sale{
		ID: "S900", LoadID: "L900", FarmerID: "F900", MarketID: "M001",
		BuyerName: "BigBasket",
		NetAmount: decimal.NewFromInt(100),
		Timestamp: time.Date(2023, 10, 24, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SettleLoad: %v", err)
	}

	var buf bytes.Buffer
	if err := NewService(store, nil, nil).WriteCSV(ctx, "M001", &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if records[1][0] != "Unknown" {
		t.Fatalf("farmer column = %q, want Unknown", records[1][0])
	}
}

func TestFileName(t *testing.T) {
	got := FileName(models.Market{ID: "M001", District: "Salem"})
	if got != "Uzhavar360_Salem_Data.csv" {
		t.Fatalf("FileName = %q", got)
	}
}
