// Package summary groups a market's sales by farmer and calendar day and
// turns the per-farmer totals into daily summary notifications.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/service/notify"
)

const dayLayout = "2006-01-02"

// AggregateDailySales sums net amounts per farmer for sales whose timestamp
// falls on the given UTC calendar day. The target day is explicit so past
// days can be re-run. An empty result means nothing to summarize, not an
// error.
func AggregateDailySales(sales []models.Sale, day time.Time) map[string]decimal.Decimal {
	target := day.UTC().Format(dayLayout)

	totals := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		if sale.Timestamp.UTC().Format(dayLayout) != target {
			continue
		}
		totals[sale.FarmerID] = totals[sale.FarmerID].Add(sale.NetAmount)
	}
	return totals
}

// Service generates the per-farmer daily summary notifications.
type Service struct {
	ledger   ledger.Ledger
	notifier *notify.Service
	logger   *zap.Logger
}

// NewService wires a summary generator.
func NewService(l ledger.Ledger, notifier *notify.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: l, notifier: notifier, logger: logger}
}

// GenerateDailySummaries records one summary notification per farmer with
// sales on the given day in the given market, in farmer-ID order. A farmer
// identifier that no longer resolves is logged and skipped; historical
// farmer records may be pruned while sales persist.
func (s *Service) GenerateDailySummaries(ctx context.Context, marketID string, day time.Time) ([]models.SmsLog, error) {
	sales, err := s.ledger.ListSales(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load sales for market %s: %w", marketID, err)
	}

	totals := AggregateDailySales(sales, day)
	if len(totals) == 0 {
		s.logger.Info("no sales to summarize",
			zap.String("market_id", marketID),
			zap.String("day", day.UTC().Format(dayLayout)))
		return nil, nil
	}

	farmerIDs := make([]string, 0, len(totals))
	for id := range totals {
		farmerIDs = append(farmerIDs, id)
	}
	sort.Strings(farmerIDs)

	var logs []models.SmsLog
	for _, farmerID := range farmerIDs {
		farmer, err := s.ledger.GetFarmer(ctx, farmerID)
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("skipping summary for unresolvable farmer",
				zap.String("farmer_id", farmerID),
				zap.String("market_id", marketID))
			continue
		}
		if err != nil {
			return logs, fmt.Errorf("load farmer %s: %w", farmerID, err)
		}

		entry, err := s.notifier.RecordSummary(ctx, farmer, totals[farmerID])
		if err != nil {
			return logs, err
		}
		logs = append(logs, entry)
	}

	s.logger.Info("daily summaries generated",
		zap.String("market_id", marketID),
		zap.String("day", day.UTC().Format(dayLayout)),
		zap.Int("count", len(logs)))
	return logs, nil
}
