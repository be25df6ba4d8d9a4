package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/uzhavar360/backend/internal/domain/models"
)

// MemoryLedger is the process-local Ledger implementation. All state lives
// behind one mutex; insertion order is preserved per entity kind so list
// results are deterministic.
type MemoryLedger struct {
	mu sync.RWMutex

	markets     map[string]models.Market
	marketOrder []string

	farmers     map[string]models.Farmer
	farmerOrder []string

	loads     map[string]models.CropLoad
	loadOrder []string

	sales     map[string]models.Sale
	saleOrder []string

	smsLogs []models.SmsLog
}

// NewMemoryLedger constructs an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		markets: make(map[string]models.Market),
		farmers: make(map[string]models.Farmer),
		loads:   make(map[string]models.CropLoad),
		sales:   make(map[string]models.Sale),
	}
}

var _ Ledger = (*MemoryLedger)(nil)

// AddMarket registers reference market data.
func (m *MemoryLedger) AddMarket(_ context.Context, market models.Market) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.markets[market.ID]; ok {
		return fmt.Errorf("market %s already exists: %w", market.ID, models.ErrInvalidState)
	}
	m.markets[market.ID] = market
	m.marketOrder = append(m.marketOrder, market.ID)
	return nil
}

// GetMarket looks up one market by identifier.
func (m *MemoryLedger) GetMarket(_ context.Context, id string) (models.Market, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	market, ok := m.markets[id]
	if !ok {
		return models.Market{}, fmt.Errorf("market %s: %w", id, models.ErrNotFound)
	}
	return market, nil
}

// ListMarkets returns all registered markets in registration order.
func (m *MemoryLedger) ListMarkets(_ context.Context) ([]models.Market, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Market, 0, len(m.marketOrder))
	for _, id := range m.marketOrder {
		out = append(out, m.markets[id])
	}
	return out, nil
}

// AddFarmer appends a farmer record.
func (m *MemoryLedger) AddFarmer(_ context.Context, farmer models.Farmer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.farmers[farmer.ID]; ok {
		return fmt.Errorf("farmer %s already exists: %w", farmer.ID, models.ErrInvalidState)
	}
	m.farmers[farmer.ID] = farmer
	m.farmerOrder = append(m.farmerOrder, farmer.ID)
	return nil
}

// GetFarmer looks up one farmer by identifier.
func (m *MemoryLedger) GetFarmer(_ context.Context, id string) (models.Farmer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	farmer, ok := m.farmers[id]
	if !ok {
		return models.Farmer{}, fmt.Errorf("farmer %s: %w", id, models.ErrNotFound)
	}
	return farmer, nil
}

// ListFarmers returns the market's farmers in registration order.
func (m *MemoryLedger) ListFarmers(_ context.Context, marketID string) ([]models.Farmer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Farmer
	for _, id := range m.farmerOrder {
		if f := m.farmers[id]; f.MarketID == marketID {
			out = append(out, f)
		}
	}
	return out, nil
}

// AddLoad appends a crop load record.
func (m *MemoryLedger) AddLoad(_ context.Context, load models.CropLoad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loads[load.ID]; ok {
		return fmt.Errorf("load %s already exists: %w", load.ID, models.ErrInvalidState)
	}
	m.loads[load.ID] = load
	m.loadOrder = append(m.loadOrder, load.ID)
	return nil
}

// GetLoad looks up one crop load by identifier.
func (m *MemoryLedger) GetLoad(_ context.Context, id string) (models.CropLoad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	load, ok := m.loads[id]
	if !ok {
		return models.CropLoad{}, fmt.Errorf("load %s: %w", id, models.ErrNotFound)
	}
	return load, nil
}

// ListLoads returns the market's loads in intake order.
func (m *MemoryLedger) ListLoads(_ context.Context, marketID string) ([]models.CropLoad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.CropLoad
	for _, id := range m.loadOrder {
		if l := m.loads[id]; l.MarketID == marketID {
			out = append(out, l)
		}
	}
	return out, nil
}

// SettleLoad marks the sale's load SOLD and records the sale atomically.
func (m *MemoryLedger) SettleLoad(_ context.Context, sale models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	load, ok := m.loads[sale.LoadID]
	if !ok {
		return fmt.Errorf("load %s: %w", sale.LoadID, models.ErrNotFound)
	}
	if load.Status != models.LoadPending {
		return fmt.Errorf("load %s is %s: %w", load.ID, load.Status, models.ErrInvalidState)
	}
	if _, ok := m.sales[sale.ID]; ok {
		return fmt.Errorf("sale %s already exists: %w", sale.ID, models.ErrInvalidState)
	}

	load.Status = models.LoadSold
	m.loads[load.ID] = load
	m.sales[sale.ID] = sale
	m.saleOrder = append(m.saleOrder, sale.ID)
	return nil
}

// GetSale looks up one sale by identifier.
func (m *MemoryLedger) GetSale(_ context.Context, id string) (models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sale, ok := m.sales[id]
	if !ok {
		return models.Sale{}, fmt.Errorf("sale %s: %w", id, models.ErrNotFound)
	}
	return sale, nil
}

// ListSales returns the market's sales in settlement order.
func (m *MemoryLedger) ListSales(_ context.Context, marketID string) ([]models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Sale
	for _, id := range m.saleOrder {
		if s := m.sales[id]; s.MarketID == marketID {
			out = append(out, s)
		}
	}
	return out, nil
}

// AddSmsLog appends a notification log entry.
func (m *MemoryLedger) AddSmsLog(_ context.Context, log models.SmsLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.smsLogs = append(m.smsLogs, log)
	return nil
}

// ListSmsLogs returns the market's notification log, most recent first.
func (m *MemoryLedger) ListSmsLogs(_ context.Context, marketID string) ([]models.SmsLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SmsLog
	for i := len(m.smsLogs) - 1; i >= 0; i-- {
		if m.smsLogs[i].MarketID == marketID {
			out = append(out, m.smsLogs[i])
		}
	}
	return out, nil
}
