// Package export renders a market's sales ledger as CSV and optionally
// mirrors the same rows into a Google Sheet.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/repository/sheets"
)

const (
	timestampLayout = "02/01/2006, 15:04:05"
	salesSheetRange = "Sales!A:F"
)

var csvHeader = []string{"Farmer", "Crop", "Qty (kg)", "Buyer", "Net Amount (₹)", "Timestamp"}

// Service resolves a market's sales into export rows.
type Service struct {
	ledger ledger.Ledger
	mirror sheets.Mirror
	logger *zap.Logger
}

// NewService wires an exporter. The mirror may be nil when no spreadsheet
// is configured.
func NewService(l ledger.Ledger, mirror sheets.Mirror, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: l, mirror: mirror, logger: logger}
}

// rows builds one record per sale: farmer name, crop, quantity, buyer, net
// amount and timestamp. Missing load or farmer references degrade to
// "Unknown" rather than failing the export.
func (s *Service) rows(ctx context.Context, marketID string) ([][]string, error) {
	sales, err := s.ledger.ListSales(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load sales for market %s: %w", marketID, err)
	}

	out := make([][]string, 0, len(sales))
	for _, sale := range sales {
		farmerName := "Unknown"
		if farmer, err := s.ledger.GetFarmer(ctx, sale.FarmerID); err == nil {
			farmerName = farmer.Name
		}

		crop := "Unknown"
		quantity := float64(0)
		if load, err := s.ledger.GetLoad(ctx, sale.LoadID); err == nil {
			crop = load.Crop
			quantity = load.Quantity
		}

		out = append(out, []string{
			farmerName,
			crop,
			strconv.FormatFloat(quantity, 'f', -1, 64),
			sale.BuyerName,
			models.MoneyString(sale.NetAmount),
			sale.Timestamp.Format(timestampLayout),
		})
	}
	return out, nil
}

// WriteCSV streams the market's ledger as CSV: a header row followed by one
// row per sale. Fields with embedded commas are quoted.
func (s *Service) WriteCSV(ctx context.Context, marketID string, w io.Writer) error {
	rows, err := s.rows(ctx, marketID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("ledger exported",
		zap.String("market_id", marketID),
		zap.Int("sales", len(rows)))
	return nil
}

// FileName derives the download name for a market's export.
func FileName(market models.Market) string {
	return fmt.Sprintf("Uzhavar360_%s_Data.csv", market.District)
}

// MirrorToSheet appends the market's export rows to the configured
// spreadsheet.
func (s *Service) MirrorToSheet(ctx context.Context, marketID string) error {
	if s.mirror == nil {
		return fmt.Errorf("no sheet mirror configured: %w", models.ErrInvalidState)
	}

	rows, err := s.rows(ctx, marketID)
	if err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	if err := s.mirror.AppendRows(ctx, salesSheetRange, values); err != nil {
		return fmt.Errorf("mirror market %s sales: %w", marketID, err)
	}

	s.logger.Info("ledger mirrored to sheet",
		zap.String("market_id", marketID),
		zap.Int("rows", len(values)))
	return nil
}
