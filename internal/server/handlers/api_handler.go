package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/domain/models"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/service/assistant"
	"github.com/uzhavar360/backend/internal/service/export"
	"github.com/uzhavar360/backend/internal/service/settlement"
	"github.com/uzhavar360/backend/internal/service/summary"
)

// APIHandler adapts the settlement pipeline to HTTP.
type APIHandler struct {
	ledger     ledger.Ledger
	settlement *settlement.Service
	summary    *summary.Service
	export     *export.Service
	assistant  *assistant.Service
	logger     *zap.Logger
}

// NewAPIHandler constructs the HTTP handler adapter.
func NewAPIHandler(l ledger.Ledger, settlementSvc *settlement.Service, summarySvc *summary.Service, exportSvc *export.Service, assistantSvc *assistant.Service, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		ledger:     l,
		settlement: settlementSvc,
		summary:    summarySvc,
		export:     exportSvc,
		assistant:  assistantSvc,
		logger:     logger,
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ListMarkets returns the market reference list.
func (h *APIHandler) ListMarkets(c *gin.Context) {
	markets, err := h.ledger.ListMarkets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, markets)
}

type registerFarmerRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Village     string `json:"village"`
	PrimaryCrop string `json:"primaryCrop"`
	MarketID    string `json:"marketId" binding:"required"`
}

// RegisterFarmer creates a farmer record.
func (h *APIHandler) RegisterFarmer(c *gin.Context) {
	var req registerFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	farmer, err := h.settlement.RegisterFarmer(c.Request.Context(), settlement.FarmerInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Village:     req.Village,
		PrimaryCrop: req.PrimaryCrop,
		MarketID:    req.MarketID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, farmer)
}

// ListFarmers returns the farmers registered at a market.
func (h *APIHandler) ListFarmers(c *gin.Context) {
	marketID := c.Query("market")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market query parameter is required"})
		return
	}

	farmers, err := h.ledger.ListFarmers(c.Request.Context(), marketID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, farmers)
}

type intakeLoadRequest struct {
	FarmerID string  `json:"farmerId" binding:"required"`
	MarketID string  `json:"marketId" binding:"required"`
	Crop     string  `json:"crop" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Grade    string  `json:"grade" binding:"required"`
}

// IntakeLoad records a crop load arrival.
func (h *APIHandler) IntakeLoad(c *gin.Context) {
	var req intakeLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	load, err := h.settlement.IntakeLoad(c.Request.Context(), settlement.LoadInput{
		FarmerID: req.FarmerID,
		MarketID: req.MarketID,
		Crop:     req.Crop,
		Quantity: req.Quantity,
		Grade:    models.QualityGrade(req.Grade),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, load)
}

// ListLoads returns the crop loads of a market.
func (h *APIHandler) ListLoads(c *gin.Context) {
	marketID := c.Query("market")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market query parameter is required"})
		return
	}

	loads, err := h.ledger.ListLoads(c.Request.Context(), marketID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loads)
}

type recordSaleRequest struct {
	LoadID       string          `json:"loadId" binding:"required"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" binding:"required"`
	BuyerName    string          `json:"buyerName" binding:"required"`
}

// RecordSale settles a pending load.
func (h *APIHandler) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sale, err := h.settlement.RecordSale(c.Request.Context(), req.LoadID, req.PricePerUnit, req.BuyerName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// ListSales returns the sales of a market.
func (h *APIHandler) ListSales(c *gin.Context) {
	marketID := c.Query("market")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market query parameter is required"})
		return
	}

	sales, err := h.ledger.ListSales(c.Request.Context(), marketID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// ListSmsLogs returns the notification log of a market, most recent first.
func (h *APIHandler) ListSmsLogs(c *gin.Context) {
	marketID := c.Query("market")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market query parameter is required"})
		return
	}

	logs, err := h.ledger.ListSmsLogs(c.Request.Context(), marketID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

type dailySummaryRequest struct {
	MarketID string `json:"marketId" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Day      string `json:"day"` // YYYY-MM-DD; defaults to today (UTC)
}

// GenerateDailySummaries dispatches the per-farmer daily summary run.
func (h *APIHandler) GenerateDailySummaries(c *gin.Context) {
	var req dailySummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !models.UserRole(req.Role).CanTriggerSummaries() {
		c.JSON(http.StatusForbidden, gin.H{"error": "role not permitted to trigger summaries"})
		return
	}

	day := time.Now().UTC()
	if req.Day != "" {
		parsed, err := time.Parse("2006-01-02", req.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be formatted YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	logs, err := h.summary.GenerateDailySummaries(c.Request.Context(), req.MarketID, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": len(logs), "logs": logs})
}

// ExportCSV streams the market's sales ledger as a CSV download.
func (h *APIHandler) ExportCSV(c *gin.Context) {
	marketID := c.Query("market")
	if marketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market query parameter is required"})
		return
	}

	market, err := h.ledger.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(market)+`"`)
	if err := h.export.WriteCSV(c.Request.Context(), marketID, c.Writer); err != nil {
		h.logger.Error("csv export failed", zap.String("market_id", marketID), zap.Error(err))
	}
}

type mirrorRequest struct {
	MarketID string `json:"marketId" binding:"required"`
}

// MirrorToSheet appends the market's export rows to the configured sheet.
func (h *APIHandler) MirrorToSheet(c *gin.Context) {
	var req mirrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.export.MirrorToSheet(c.Request.Context(), req.MarketID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

type assistantRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// AskAssistant forwards a workflow question to the assistant. The reply is
// always 200: upstream failures surface as the fixed fallback string.
func (h *APIHandler) AskAssistant(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reply := h.assistant.Ask(c.Request.Context(), req.Prompt)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
