// Package mongodb provides the persistent Ledger implementation.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
)

const (
	marketsColl = "markets"
	farmersColl = "farmers"
	loadsColl   = "crop_loads"
	salesColl   = "sales"
	smsLogsColl = "sms_logs"
)

// MongoLedger implements the ledger.Ledger contract on MongoDB.
type MongoLedger struct {
	client *mongo.Client
	dbName string
}

var _ ledger.Ledger = (*MongoLedger)(nil)

// NewMongoLedger connects to MongoDB and verifies the connection.
func NewMongoLedger(ctx context.Context, uri string, dbName string) (*MongoLedger, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoLedger{client: client, dbName: dbName}, nil
}

// Close closes the MongoDB connection.
func (r *MongoLedger) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoLedger) coll(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Monetary amounts are stored as decimal strings so they round-trip exactly.
type saleDoc struct {
	ID           string    `bson:"_id"`
	LoadID       string    `bson:"load_id"`
	FarmerID     string    `bson:"farmer_id"`
	MarketID     string    `bson:"market_id"`
	PricePerUnit string    `bson:"price_per_unit"`
	BuyerName    string    `bson:"buyer_name"`
	TotalAmount  string    `bson:"total_amount"`
	Deductions   string    `bson:"deductions"`
	NetAmount    string    `bson:"net_amount"`
	Timestamp    time.Time `bson:"timestamp"`
}

type marketDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	District string `bson:"district"`
}

type farmerDoc struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Phone       string `bson:"phone"`
	Village     string `bson:"village"`
	PrimaryCrop string `bson:"primary_crop"`
	MarketID    string `bson:"market_id"`
}

type loadDoc struct {
	ID       string    `bson:"_id"`
	FarmerID string    `bson:"farmer_id"`
	MarketID string    `bson:"market_id"`
	Crop     string    `bson:"crop"`
	Quantity float64   `bson:"quantity"`
	Grade    string    `bson:"grade"`
	Date     time.Time `bson:"date"`
	Status   string    `bson:"status"`
}

type smsLogDoc struct {
	ID         string    `bson:"_id"`
	MarketID   string    `bson:"market_id"`
	FarmerName string    `bson:"farmer_name"`
	Phone      string    `bson:"phone"`
	Message    string    `bson:"message"`
	Timestamp  time.Time `bson:"timestamp"`
	Status     string    `bson:"status"`
}

func toSaleDoc(s models.Sale) saleDoc {
	return saleDoc{
		ID:           s.ID,
		LoadID:       s.LoadID,
		FarmerID:     s.FarmerID,
		MarketID:     s.MarketID,
		PricePerUnit: s.PricePerUnit.String(),
		BuyerName:    s.BuyerName,
		TotalAmount:  s.TotalAmount.String(),
		Deductions:   s.Deductions.String(),
		NetAmount:    s.NetAmount.String(),
		Timestamp:    s.Timestamp,
	}
}

func fromSaleDoc(d saleDoc) (models.Sale, error) {
	price, err := decimal.NewFromString(d.PricePerUnit)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s price: %w", d.ID, err)
	}
	total, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s total: %w", d.ID, err)
	}
	deductions, err := decimal.NewFromString(d.Deductions)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s deductions: %w", d.ID, err)
	}
	net, err := decimal.NewFromString(d.NetAmount)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s net: %w", d.ID, err)
	}

	return models.Sale{
		ID:           d.ID,
		LoadID:       d.LoadID,
		FarmerID:     d.FarmerID,
		MarketID:     d.MarketID,
		PricePerUnit: price,
		BuyerName:    d.BuyerName,
		TotalAmount:  total,
		Deductions:   deductions,
		NetAmount:    net,
		Timestamp:    d.Timestamp,
	}, nil
}

// AddMarket inserts reference market data.
func (r *MongoLedger) AddMarket(ctx context.Context, market models.Market) error {
	doc := marketDoc{ID: market.ID, Name: market.Name, District: market.District}
	if _, err := r.coll(marketsColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("market %s already exists: %w", market.ID, models.ErrInvalidState)
		}
		return fmt.Errorf("failed to insert market: %w", err)
	}
	return nil
}

// GetMarket looks up one market by identifier.
func (r *MongoLedger) GetMarket(ctx context.Context, id string) (models.Market, error) {
	var doc marketDoc
	err := r.coll(marketsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Market{}, fmt.Errorf("market %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Market{}, fmt.Errorf("failed to load market: %w", err)
	}
	return models.Market{ID: doc.ID, Name: doc.Name, District: doc.District}, nil
}

// ListMarkets returns all registered markets.
func (r *MongoLedger) ListMarkets(ctx context.Context) ([]models.Market, error) {
	cursor, err := r.coll(marketsColl).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}
	var docs []marketDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}
	out := make([]models.Market, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Market{ID: d.ID, Name: d.Name, District: d.District})
	}
	return out, nil
}

// AddFarmer inserts a farmer record.
func (r *MongoLedger) AddFarmer(ctx context.Context, farmer models.Farmer) error {
	doc := farmerDoc{
		ID:          farmer.ID,
		Name:        farmer.Name,
		Phone:       farmer.Phone,
		Village:     farmer.Village,
		PrimaryCrop: farmer.PrimaryCrop,
		MarketID:    farmer.MarketID,
	}
	if _, err := r.coll(farmersColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("farmer %s already exists: %w", farmer.ID, models.ErrInvalidState)
		}
		return fmt.Errorf("failed to insert farmer: %w", err)
	}
	return nil
}

// GetFarmer looks up one farmer by identifier.
func (r *MongoLedger) GetFarmer(ctx context.Context, id string) (models.Farmer, error) {
	var doc farmerDoc
	err := r.coll(farmersColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Farmer{}, fmt.Errorf("farmer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Farmer{}, fmt.Errorf("failed to load farmer: %w", err)
	}
	return models.Farmer{
		ID:          doc.ID,
		Name:        doc.Name,
		Phone:       doc.Phone,
		Village:     doc.Village,
		PrimaryCrop: doc.PrimaryCrop,
		MarketID:    doc.MarketID,
	}, nil
}

// ListFarmers returns the market's farmers.
func (r *MongoLedger) ListFarmers(ctx context.Context, marketID string) ([]models.Farmer, error) {
	cursor, err := r.coll(farmersColl).Find(ctx, bson.M{"market_id": marketID})
	if err != nil {
		return nil, fmt.Errorf("failed to list farmers: %w", err)
	}
	var docs []farmerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode farmers: %w", err)
	}
	out := make([]models.Farmer, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Farmer{
			ID:          d.ID,
			Name:        d.Name,
			Phone:       d.Phone,
			Village:     d.Village,
			PrimaryCrop: d.PrimaryCrop,
			MarketID:    d.MarketID,
		})
	}
	return out, nil
}

// AddLoad inserts a crop load record.
func (r *MongoLedger) AddLoad(ctx context.Context, load models.CropLoad) error {
	doc := loadDoc{
		ID:       load.ID,
		FarmerID: load.FarmerID,
		MarketID: load.MarketID,
		Crop:     load.Crop,
		Quantity: load.Quantity,
		Grade:    string(load.Grade),
		Date:     load.Date,
		Status:   string(load.Status),
	}
	if _, err := r.coll(loadsColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("load %s already exists: %w", load.ID, models.ErrInvalidState)
		}
		return fmt.Errorf("failed to insert load: %w", err)
	}
	return nil
}

// GetLoad looks up one crop load by identifier.
func (r *MongoLedger) GetLoad(ctx context.Context, id string) (models.CropLoad, error) {
	var doc loadDoc
	err := r.coll(loadsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CropLoad{}, fmt.Errorf("load %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.CropLoad{}, fmt.Errorf("failed to load crop load: %w", err)
	}
	return fromLoadDoc(doc), nil
}

// ListLoads returns the market's crop loads.
func (r *MongoLedger) ListLoads(ctx context.Context, marketID string) ([]models.CropLoad, error) {
	cursor, err := r.coll(loadsColl).Find(ctx, bson.M{"market_id": marketID})
	if err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	var docs []loadDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode loads: %w", err)
	}
	out := make([]models.CropLoad, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromLoadDoc(d))
	}
	return out, nil
}

func fromLoadDoc(d loadDoc) models.CropLoad {
	return models.CropLoad{
		ID:       d.ID,
		FarmerID: d.FarmerID,
		MarketID: d.MarketID,
		Crop:     d.Crop,
		Quantity: d.Quantity,
		Grade:    models.QualityGrade(d.Grade),
		Date:     d.Date,
		Status:   models.LoadStatus(d.Status),
	}
}

// SettleLoad flips the load PENDING to SOLD, then inserts the sale. The
// conditional update is what rejects double-selling: a second settlement
// matches no document. Standalone deployments have no multi-document
// transactions, so the status flip leads and a failed sale insert reverts
// it best-effort.
func (r *MongoLedger) SettleLoad(ctx context.Context, sale models.Sale) error {
	res, err := r.coll(loadsColl).UpdateOne(ctx,
		bson.M{"_id": sale.LoadID, "status": string(models.LoadPending)},
		bson.M{"$set": bson.M{"status": string(models.LoadSold)}})
	if err != nil {
		return fmt.Errorf("failed to update load status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetLoad(ctx, sale.LoadID); err != nil {
			return err
		}
		return fmt.Errorf("load %s is not PENDING: %w", sale.LoadID, models.ErrInvalidState)
	}

	if _, err := r.coll(salesColl).InsertOne(ctx, toSaleDoc(sale)); err != nil {
		_, revertErr := r.coll(loadsColl).UpdateOne(ctx,
			bson.M{"_id": sale.LoadID},
			bson.M{"$set": bson.M{"status": string(models.LoadPending)}})
		if revertErr != nil {
			return fmt.Errorf("failed to insert sale (revert also failed: %v): %w", revertErr, err)
		}
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// GetSale looks up one sale by identifier.
func (r *MongoLedger) GetSale(ctx context.Context, id string) (models.Sale, error) {
	var doc saleDoc
	err := r.coll(salesColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Sale{}, fmt.Errorf("sale %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Sale{}, fmt.Errorf("failed to load sale: %w", err)
	}
	return fromSaleDoc(doc)
}

// ListSales returns the market's sales in timestamp order.
func (r *MongoLedger) ListSales(ctx context.Context, marketID string) ([]models.Sale, error) {
	cursor, err := r.coll(salesColl).Find(ctx, bson.M{"market_id": marketID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	var docs []saleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}
	out := make([]models.Sale, 0, len(docs))
	for _, d := range docs {
		sale, err := fromSaleDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, nil
}

// AddSmsLog inserts a notification log entry.
func (r *MongoLedger) AddSmsLog(ctx context.Context, log models.SmsLog) error {
	doc := smsLogDoc{
		ID:         log.ID,
		MarketID:   log.MarketID,
		FarmerName: log.FarmerName,
		Phone:      log.Phone,
		Message:    log.Message,
		Timestamp:  log.Timestamp,
		Status:     string(log.Status),
	}
	if _, err := r.coll(smsLogsColl).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert sms log: %w", err)
	}
	return nil
}

// ListSmsLogs returns the market's notification log, most recent first.
func (r *MongoLedger) ListSmsLogs(ctx context.Context, marketID string) ([]models.SmsLog, error) {
	cursor, err := r.coll(smsLogsColl).Find(ctx, bson.M{"market_id": marketID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sms logs: %w", err)
	}
	var docs []smsLogDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sms logs: %w", err)
	}
	out := make([]models.SmsLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.SmsLog{
			ID:         d.ID,
			MarketID:   d.MarketID,
			FarmerName: d.FarmerName,
			Phone:      d.Phone,
			Message:    d.Message,
			Timestamp:  d.Timestamp,
			Status:     models.DeliveryStatus(d.Status),
		})
	}
	return out, nil
}
