// Package ledger defines the append-only store contract for a market's
// farmers, loads, sales and notification logs, plus the in-memory
// implementation used when no database is configured.
package ledger

import (
	"context"

	"github.com/uzhavar360/backend/internal/domain/models"
)

// Ledger is the store contract shared by the in-memory and MongoDB
// implementations. Insertions are append-only; Sale and SmsLog expose no
// mutation at all, and the only permitted CropLoad mutation is the
// PENDING to SOLD transition performed inside SettleLoad together with the
// Sale insert, as one atomic unit.
type Ledger interface {
	AddMarket(ctx context.Context, market models.Market) error
	GetMarket(ctx context.Context, id string) (models.Market, error)
	ListMarkets(ctx context.Context) ([]models.Market, error)

	AddFarmer(ctx context.Context, farmer models.Farmer) error
	GetFarmer(ctx context.Context, id string) (models.Farmer, error)
	ListFarmers(ctx context.Context, marketID string) ([]models.Farmer, error)

	AddLoad(ctx context.Context, load models.CropLoad) error
	GetLoad(ctx context.Context, id string) (models.CropLoad, error)
	ListLoads(ctx context.Context, marketID string) ([]models.CropLoad, error)

	// SettleLoad flips the referenced load from PENDING to SOLD and inserts
	// the sale in a single critical section. It fails with
	// models.ErrNotFound when the load does not exist and
	// models.ErrInvalidState when the load is not PENDING; on failure
	// nothing is written.
	SettleLoad(ctx context.Context, sale models.Sale) error
	GetSale(ctx context.Context, id string) (models.Sale, error)
	ListSales(ctx context.Context, marketID string) ([]models.Sale, error)

	AddSmsLog(ctx context.Context, log models.SmsLog) error
	// ListSmsLogs returns the market's notification log, most recent first.
	ListSmsLogs(ctx context.Context, marketID string) ([]models.SmsLog, error)
}
