package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solderinua-oss/solder-warehouse/internal/service"
)

const defaultTopN = 10

type WarehouseHandler struct {
	warehouse *service.WarehouseService
}

func NewWarehouseHandler(warehouse *service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouse: warehouse}
}

func (h *WarehouseHandler) GetProducts(c *gin.Context) {
	products, err := h.warehouse.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetSales returns the ledger newest first.
func (h *WarehouseHandler) GetSales(c *gin.Context) {
	events, err := h.warehouse.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *WarehouseHandler) GetStats(c *gin.Context) {
	stats, err := h.warehouse.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *WarehouseHandler) GetCapital(c *gin.Context) {
	split, err := h.warehouse.GetCapitalSplit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, split)
}

func (h *WarehouseHandler) GetAnalysis(c *gin.Context) {
	report, err := h.warehouse.AnalyzeInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *WarehouseHandler) GetAlerts(c *gin.Context) {
	items, err := h.warehouse.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetTop returns the ?n= items with the highest PVS.
func (h *WarehouseHandler) GetTop(c *gin.Context) {
	n := parsePositiveIntWithDefault(c.Query("n"), defaultTopN)
	items, err := h.warehouse.TopByPVS(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
