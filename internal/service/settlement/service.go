// Package settlement implements the core pipeline: farmer registration,
// load intake and the sale settlement that turns a pending load into an
// immutable Sale plus a farmer notification.
package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/service/notify"
)

// DefaultFeeRate is the market commission applied to every sale total.
var DefaultFeeRate = decimal.NewFromFloat(0.05)

// Service executes ledger mutations for the settlement pipeline.
type Service struct {
	ledger   ledger.Ledger
	notifier *notify.Service
	feeRate  decimal.Decimal
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the settlement engine. A non-positive fee rate
// falls back to the default 5%.
func NewService(l ledger.Ledger, notifier *notify.Service, feeRate decimal.Decimal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if feeRate.LessThanOrEqual(decimal.Zero) {
		feeRate = DefaultFeeRate
	}
	return &Service{
		ledger:   l,
		notifier: notifier,
		feeRate:  feeRate,
		logger:   logger,
		now:      time.Now,
	}
}

// FarmerInput carries the registration form fields.
type FarmerInput struct {
	Name        string
	Phone       string
	Village     string
	PrimaryCrop string
	MarketID    string
}

// RegisterFarmer validates and appends a new farmer record.
func (s *Service) RegisterFarmer(ctx context.Context, input FarmerInput) (models.Farmer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return models.Farmer{}, fmt.Errorf("farmer name is required: %w", models.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return models.Farmer{}, fmt.Errorf("farmer phone is required: %w", models.ErrInvalidInput)
	}
	if _, err := s.ledger.GetMarket(ctx, input.MarketID); err != nil {
		return models.Farmer{}, err
	}

	farmer := models.Farmer{
		ID:          models.NewID("F"),
		Name:        strings.TrimSpace(input.Name),
		Phone:       strings.TrimSpace(input.Phone),
		Village:     input.Village,
		PrimaryCrop: input.PrimaryCrop,
		MarketID:    input.MarketID,
	}
	if err := s.ledger.AddFarmer(ctx, farmer); err != nil {
		return models.Farmer{}, err
	}

	s.logger.Info("farmer registered",
		zap.String("farmer_id", farmer.ID),
		zap.String("market_id", farmer.MarketID))
	return farmer, nil
}

// LoadInput carries the intake form fields.
type LoadInput struct {
	FarmerID string
	MarketID string
	Crop     string
	Quantity float64
	Grade    models.QualityGrade
}

// IntakeLoad validates and appends a new PENDING crop load. The load's
// market must match the farmer's market.
func (s *Service) IntakeLoad(ctx context.Context, input LoadInput) (models.CropLoad, error) {
	if strings.TrimSpace(input.Crop) == "" {
		return models.CropLoad{}, fmt.Errorf("crop name is required: %w", models.ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return models.CropLoad{}, fmt.Errorf("quantity must be positive: %w", models.ErrInvalidInput)
	}
	if !input.Grade.Valid() {
		return models.CropLoad{}, fmt.Errorf("unknown grade %q: %w", input.Grade, models.ErrInvalidInput)
	}

	farmer, err := s.ledger.GetFarmer(ctx, input.FarmerID)
	if err != nil {
		return models.CropLoad{}, err
	}
	if farmer.MarketID != input.MarketID {
		return models.CropLoad{}, fmt.Errorf("load market %s does not match farmer market %s: %w",
			input.MarketID, farmer.MarketID, models.ErrInvalidInput)
	}

	now := s.now().UTC()
	load := models.CropLoad{
		ID:       models.NewID("L"),
		FarmerID: input.FarmerID,
		MarketID: input.MarketID,
		Crop:     strings.TrimSpace(input.Crop),
		Quantity: input.Quantity,
		Grade:    input.Grade,
		Date:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Status:   models.LoadPending,
	}
	if err := s.ledger.AddLoad(ctx, load); err != nil {
		return models.CropLoad{}, err
	}

	s.logger.Info("load intake recorded",
		zap.String("load_id", load.ID),
		zap.String("farmer_id", load.FarmerID),
		zap.Float64("quantity_kg", load.Quantity))
	return load, nil
}

// RecordSale settles a pending load against a buyer at the given unit
// price. The load flips to SOLD and the Sale is created as one atomic
// ledger operation; the sale notice is then recorded on the notification
// log. Notification failure never unwinds a committed settlement.
func (s *Service) RecordSale(ctx context.Context, loadID string, pricePerUnit decimal.Decimal, buyerName string) (models.Sale, error) {
	if strings.TrimSpace(buyerName) == "" {
		return models.Sale{}, fmt.Errorf("buyer name is required: %w", models.ErrInvalidInput)
	}
	if !pricePerUnit.IsPositive() {
		return models.Sale{}, fmt.Errorf("price per unit must be positive: %w", models.ErrInvalidInput)
	}

	load, err := s.ledger.GetLoad(ctx, loadID)
	if err != nil {
		return models.Sale{}, err
	}
	if load.Status != models.LoadPending {
		return models.Sale{}, fmt.Errorf("load %s is %s: %w", load.ID, load.Status, models.ErrInvalidState)
	}
	if load.Quantity <= 0 {
		return models.Sale{}, fmt.Errorf("load %s has no quantity: %w", load.ID, models.ErrInvalidInput)
	}

	farmer, err := s.ledger.GetFarmer(ctx, load.FarmerID)
	if err != nil {
		return models.Sale{}, err
	}

	quantity := decimal.NewFromFloat(load.Quantity)
	total := quantity.Mul(pricePerUnit)
	deductions := total.Mul(s.feeRate)
	net := total.Sub(deductions)

	sale := models.Sale{
		ID:           models.NewID("S"),
		LoadID:       load.ID,
		FarmerID:     load.FarmerID,
		MarketID:     load.MarketID,
		PricePerUnit: pricePerUnit,
		BuyerName:    strings.TrimSpace(buyerName),
		TotalAmount:  total,
		Deductions:   deductions,
		NetAmount:    net,
		Timestamp:    s.now().UTC(),
	}

	if err := s.ledger.SettleLoad(ctx, sale); err != nil {
		return models.Sale{}, err
	}

	load.Status = models.LoadSold
	if _, err := s.notifier.RecordSaleNotice(ctx, farmer, sale, load); err != nil {
		s.logger.Warn("sale settled but notice not recorded",
			zap.String("sale_id", sale.ID), zap.Error(err))
	}

	s.logger.Info("sale settled",
		zap.String("sale_id", sale.ID),
		zap.String("load_id", load.ID),
		zap.String("buyer", sale.BuyerName),
		zap.String("net_amount", models.MoneyString(sale.NetAmount)))
	return sale, nil
}
