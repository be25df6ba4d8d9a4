package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/seed"
	"github.com/uzhavar360/backend/internal/service/assistant"
	"github.com/uzhavar360/backend/internal/service/export"
	"github.com/uzhavar360/backend/internal/service/notify"
	"github.com/uzhavar360/backend/internal/service/settlement"
	"github.com/uzhavar360/backend/internal/service/summary"

	"github.com/shopspring/decimal"
)

func newTestEngine(t *testing.T) (*gin.Engine, *ledger.MemoryLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemoryLedger()
	if err := seed.Apply(context.Background(), store, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, f := range seed.DemoFarmers() {
		if err := store.AddFarmer(context.Background(), f); err != nil {
			t.Fatalf("AddFarmer: %v", err)
		}
	}
	for _, l := range seed.DemoLoads() {
		if err := store.AddLoad(context.Background(), l); err != nil {
			t.Fatalf("AddLoad: %v", err)
		}
	}

	notifier := notify.NewService(store, nil)
	handler := NewAPIHandler(
		store,
		settlement.NewService(store, notifier, decimal.Decimal{}, nil),
		summary.NewService(store, notifier, nil),
		export.NewService(store, nil, nil),
		assistant.NewService(nil, nil),
		nil,
	)

	engine := gin.New()
	api := engine.Group("/api")
	api.GET("/markets", handler.ListMarkets)
	api.POST("/farmers", handler.RegisterFarmer)
	api.POST("/loads", handler.IntakeLoad)
	api.POST("/sales", handler.RecordSale)
	api.GET("/sms-logs", handler.ListSmsLogs)
	api.POST("/summaries/daily", handler.GenerateDailySummaries)
	api.GET("/export/csv", handler.ExportCSV)
	api.POST("/assistant", handler.AskAssistant)

	return engine, store
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRecordSaleEndpoint(t *testing.T) {
	engine, store := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/sales",
		`{"loadId":"L101","pricePerUnit":35,"buyerName":"Zomato Hyperpure"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var sale models.Sale
	if err := json.Unmarshal(w.Body.Bytes(), &sale); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := models.MoneyString(sale.NetAmount); got != "8312.5" {
		t.Fatalf("net = %s, want 8312.5", got)
	}

	load, err := store.GetLoad(context.Background(), "L101")
	if err != nil {
		t.Fatalf("GetLoad: %v", err)
	}
	if load.Status != models.LoadSold {
		t.Fatalf("load status = %s, want SOLD", load.Status)
	}
}

func TestRecordSaleEndpointDoubleSellConflicts(t *testing.T) {
	engine, _ := newTestEngine(t)

	body := `{"loadId":"L101","pricePerUnit":35,"buyerName":"BigBasket"}`
	if w := doJSON(t, engine, http.MethodPost, "/api/sales", body); w.Code != http.StatusCreated {
		t.Fatalf("first sale status = %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodPost, "/api/sales", body); w.Code != http.StatusConflict {
		t.Fatalf("second sale status = %d, want 409", w.Code)
	}
}

func TestRecordSaleEndpointUnknownLoad(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/sales",
		`{"loadId":"L999","pricePerUnit":35,"buyerName":"BigBasket"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRegisterFarmerEndpointValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/farmers", `{"phone":"1234"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDailySummariesEndpointRoleGate(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/summaries/daily",
		`{"marketId":"M001","role":"FARMER"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestDailySummariesEndpoint(t *testing.T) {
	engine, store := newTestEngine(t)

	if w := doJSON(t, engine, http.MethodPost, "/api/sales",
		`{"loadId":"L101","pricePerUnit":35,"buyerName":"BigBasket"}`); w.Code != http.StatusCreated {
		t.Fatalf("sale status = %d", w.Code)
	}

	sales, _ := store.ListSales(context.Background(), "M001")
	day := sales[0].Timestamp.UTC().Format("2006-01-02")

	w := doJSON(t, engine, http.MethodPost, "/api/summaries/daily",
		`{"marketId":"M001","role":"ADMIN","day":"`+day+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Sent int `json:"sent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Sent != 1 {
		t.Fatalf("sent = %d, want 1", resp.Sent)
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	if w := doJSON(t, engine, http.MethodPost, "/api/sales",
		`{"loadId":"L101","pricePerUnit":35,"buyerName":"BigBasket"}`); w.Code != http.StatusCreated {
		t.Fatalf("sale status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv?market=M001", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "Uzhavar360_Salem_Data.csv") {
		t.Fatalf("content disposition = %q", got)
	}
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row:\n%s", len(lines), w.Body.String())
	}
}

func TestAssistantEndpointFallsBack(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/api/assistant", `{"prompt":"What can a collector do?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), assistant.FallbackReply) {
		t.Fatalf("body = %s, want fallback reply", w.Body.String())
	}
}
