package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.APIHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/markets", handler.ListMarkets)

		api.POST("/farmers", handler.RegisterFarmer)
		api.GET("/farmers", handler.ListFarmers)

		api.POST("/loads", handler.IntakeLoad)
		api.GET("/loads", handler.ListLoads)

		api.POST("/sales", handler.RecordSale)
		api.GET("/sales", handler.ListSales)

		api.GET("/sms-logs", handler.ListSmsLogs)
		api.POST("/summaries/daily", handler.GenerateDailySummaries)

		api.GET("/export/csv", handler.ExportCSV)
		api.POST("/export/sheet", handler.MirrorToSheet)

		api.POST("/assistant", handler.AskAssistant)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
