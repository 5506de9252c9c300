package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/solderinua-oss/solder-warehouse/internal/api/handlers"
	"github.com/solderinua-oss/solder-warehouse/internal/api/middleware"
	"github.com/solderinua-oss/solder-warehouse/internal/service"
)

type Services struct {
	Ingest    *service.IngestService
	Warehouse *service.WarehouseService
	// Drive serves /api/drive/* when Google Drive credentials are configured.
	Drive http.Handler
}

type Options struct {
	AllowedOrigins []string
	UploadDir      string
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	v1 := router.Group("/api/v1")

	if services.Ingest != nil {
		ingestHandler := handlers.NewIngestHandler(services.Ingest, opts.UploadDir)
		v1.POST("/stock/upload", ingestHandler.UploadStock)
		v1.POST("/sales/upload", ingestHandler.UploadSales)
		v1.DELETE("/products", ingestHandler.ClearProducts)
	}

	if services.Warehouse != nil {
		warehouseHandler := handlers.NewWarehouseHandler(services.Warehouse)
		v1.GET("/products", warehouseHandler.GetProducts)
		v1.GET("/sales", warehouseHandler.GetSales)
		v1.GET("/sales/stats", warehouseHandler.GetStats)
		v1.GET("/capital", warehouseHandler.GetCapital)

		analysisGroup := v1.Group("/analysis")
		{
			analysisGroup.GET("", warehouseHandler.GetAnalysis)
			analysisGroup.GET("/alerts", warehouseHandler.GetAlerts)
			analysisGroup.GET("/top", warehouseHandler.GetTop)
		}
	}

	if services.Drive != nil {
		router.Any("/api/drive/*path", gin.WrapH(services.Drive))
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
