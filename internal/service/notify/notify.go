// Package notify renders farmer-facing SMS text and records it on the
// ledger's notification log. Real gateway delivery is out of scope; every
// recorded log carries the DELIVERED status.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
)

const systemName = "Uzhavar360"

// FormatSaleNotice renders the single-line sale notice. Pure and
// deterministic: identical inputs produce byte-identical output.
func FormatSaleNotice(farmer models.Farmer, sale models.Sale, load models.CropLoad) string {
	return fmt.Sprintf("%s: Hi %s, your %skg of %s (Grade %s) has been sold for ₹%s/kg. Total: ₹%s. Deductions: ₹%s. Net Amount: ₹%s will be credited shortly.",
		systemName,
		farmer.Name,
		strconv.FormatFloat(load.Quantity, 'f', -1, 64),
		load.Crop,
		load.Grade,
		models.MoneyString(sale.PricePerUnit),
		models.MoneyString(sale.TotalAmount),
		models.MoneyString(sale.Deductions),
		models.MoneyString(sale.NetAmount))
}

// FormatDailySummary renders the per-farmer daily earnings summary.
func FormatDailySummary(farmer models.Farmer, netTotal decimal.Decimal) string {
	return fmt.Sprintf("%s: Daily Summary for %s. Total earnings today: ₹%s. Thank you for using %s.",
		systemName, farmer.Name, models.MoneyString(netTotal), systemName)
}

// Service appends rendered notifications to the ledger.
type Service struct {
	ledger ledger.Ledger
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a notification recorder.
func NewService(l ledger.Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: l, logger: logger, now: time.Now}
}

// RecordSaleNotice renders and appends the sale notification for a settled
// load. Farmer name and phone are snapshotted into the log entry.
func (s *Service) RecordSaleNotice(ctx context.Context, farmer models.Farmer, sale models.Sale, load models.CropLoad) (models.SmsLog, error) {
	log := models.SmsLog{
		ID:         models.NewID("SMS"),
		MarketID:   sale.MarketID,
		FarmerName: farmer.Name,
		Phone:      farmer.Phone,
		Message:    FormatSaleNotice(farmer, sale, load),
		Timestamp:  s.now().UTC(),
		Status:     models.SmsDelivered,
	}
	if err := s.ledger.AddSmsLog(ctx, log); err != nil {
		return models.SmsLog{}, fmt.Errorf("record sale notice: %w", err)
	}

	s.logger.Info("sale notice recorded",
		zap.String("sale_id", sale.ID),
		zap.String("farmer_id", farmer.ID),
		zap.String("phone", farmer.Phone))
	return log, nil
}

// RecordSummary renders and appends the daily summary notification.
func (s *Service) RecordSummary(ctx context.Context, farmer models.Farmer, netTotal decimal.Decimal) (models.SmsLog, error) {
	log := models.SmsLog{
		ID:         models.NewID("SMS-SUM"),
		MarketID:   farmer.MarketID,
		FarmerName: farmer.Name,
		Phone:      farmer.Phone,
		Message:    FormatDailySummary(farmer, netTotal),
		Timestamp:  s.now().UTC(),
		Status:     models.SmsDelivered,
	}
	if err := s.ledger.AddSmsLog(ctx, log); err != nil {
		return models.SmsLog{}, fmt.Errorf("record daily summary: %w", err)
	}

	s.logger.Info("daily summary recorded",
		zap.String("farmer_id", farmer.ID),
		zap.String("net_total", models.MoneyString(netTotal)))
	return log, nil
}
