package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/service"
)

// uploadField is the multipart field carrying the export.
const uploadField = "file"

type IngestHandler struct {
	ingest    *service.IngestService
	uploadDir string
}

func NewIngestHandler(ingest *service.IngestService, uploadDir string) *IngestHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &IngestHandler{ingest: ingest, uploadDir: uploadDir}
}

// UploadStock ingests a stock export.
func (h *IngestHandler) UploadStock(c *gin.Context) {
	h.handleUpload(c, h.ingest.IngestStockFile)
}

// UploadSales ingests an order export and rebuilds the sale ledger.
func (h *IngestHandler) UploadSales(c *gin.Context) {
	h.handleUpload(c, h.ingest.IngestSalesFile)
}

// ClearProducts deletes the whole catalog.
func (h *IngestHandler) ClearProducts(c *gin.Context) {
	n, err := h.ingest.ClearCatalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Склад очищено", "deleted": n})
}

type ingestFileFunc func(ctx context.Context, path string) (*domain.IngestResult, error)

func (h *IngestHandler) handleUpload(c *gin.Context, ingest ingestFileFunc) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	// Each upload gets its own scratch dir so the original name survives.
	dir, err := os.MkdirTemp(h.uploadDir, "upload-*")
	if err != nil {
		log.Error().Err(err).Str("dir", h.uploadDir).Msg("failed to create upload dir")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove upload")
		}
	}()

	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	res, err := ingest(c.Request.Context(), path)
	if err != nil {
		respondError(c, fmt.Errorf("%s: %w", file.Filename, err))
		return
	}
	c.JSON(http.StatusOK, res)
}
