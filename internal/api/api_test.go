package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solderinua-oss/solder-warehouse/internal/api/middleware"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
	"github.com/solderinua-oss/solder-warehouse/internal/repository"
	"github.com/solderinua-oss/solder-warehouse/internal/repository/memory"
	"github.com/solderinua-oss/solder-warehouse/internal/service"
)

const stockCSV = `Название;Артикул;В наличии;Цена закупки;Цена продажи;Категория;Доля
Жало T12-BC2;T12-BC2;3;100;150;Жала;Я
Станция;ST-1;2;2800;5000;;Отец
`

const salesCSV = `Номер заказа;Дата;Статус;Товар;Артикул;Кол-во;Цена продажи
1;01.03.2024;Доставлен;Жало;T12-BC2;2;150
2;02.03.2024;Отменен;Станция;ST-1;1;5000
3;03.03.2024;Доставлен;Станция;ST-1;1;5000
`

func init() {
	gin.SetMode(gin.TestMode)
}

type unavailableCatalog struct {
	repository.CatalogRepository
}

func (unavailableCatalog) FindAll(ctx context.Context) ([]domain.Product, error) {
	return nil, domain.ErrStoreUnavailable
}

func newTestRouter(t *testing.T, store repository.Store) (*gin.Engine, string) {
	t.Helper()
	uploadDir := t.TempDir()
	lock := &sync.RWMutex{}
	services := &Services{
		Ingest:    service.NewIngestService(store, service.IngestOptions{Lock: lock, Location: time.UTC}),
		Warehouse: service.NewWarehouseService(store, service.WarehouseOptions{Lock: lock}),
	}
	return NewRouter(services, Options{UploadDir: uploadDir}), uploadDir
}

func upload(t *testing.T, router http.Handler, target, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	router := NewRouter(nil, Options{})
	rec := get(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestUploadFlow(t *testing.T) {
	router, uploadDir := newTestRouter(t, memory.NewStore())

	rec := upload(t, router, "/api/v1/stock/upload", "stock.csv", stockCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stock := decode[domain.IngestResult](t, rec)
	assert.Equal(t, 2, stock.Updated)
	assert.Equal(t, "Оновлено 2 товарів. Ціни перераховано.", stock.Message)

	rec = upload(t, router, "/api/v1/sales/upload", "orders.csv", salesCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sales := decode[domain.IngestResult](t, rec)
	assert.Equal(t, 2, sales.Processed)
	assert.Equal(t, 1, sales.Dropped)
	assert.InDelta(t, 2300.0, sales.TotalProfit, 1e-9)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploads are removed after processing")

	products := decode[[]domain.Product](t, get(router, "/api/v1/products"))
	assert.Len(t, products, 2)

	events := decode[[]domain.SaleEvent](t, get(router, "/api/v1/sales"))
	require.Len(t, events, 2)
	assert.Equal(t, "Станция", events[0].ProductName)

	stats := decode[domain.Stats](t, get(router, "/api/v1/sales/stats"))
	assert.InDelta(t, 2300.0, stats.Profit, 1e-9)
	assert.InDelta(t, 100.0, stats.MineShare, 1e-9)
	assert.InDelta(t, 2200.0, stats.OtherShare, 1e-9)
	assert.Equal(t, 2, stats.Count)

	capital := decode[domain.CapitalSplit](t, get(router, "/api/v1/capital"))
	assert.InDelta(t, 300.0, capital.MineCapital, 1e-9)
	assert.InDelta(t, 5600.0, capital.OtherCapital, 1e-9)

	rec = get(router, "/api/v1/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items"`)

	rec = get(router, "/api/v1/analysis/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	top := decode[[]domain.AnalyzedItem](t, get(router, "/api/v1/analysis/top?n=1"))
	assert.Len(t, top, 1)
}

func TestUpload_Errors(t *testing.T) {
	router, _ := newTestRouter(t, memory.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/upload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, router, "/api/v1/sales/upload", "orders.xlsx", "definitely not a zip")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Contains(t, body["error"], "orders.xlsx")
	assert.NotContains(t, body, "processed")
}

func TestClearProducts(t *testing.T) {
	router, _ := newTestRouter(t, memory.NewStore())
	require.Equal(t, http.StatusOK, upload(t, router, "/api/v1/stock/upload", "stock.csv", stockCSV).Code)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Склад очищено", body["message"])
	assert.EqualValues(t, 2, body["deleted"])

	assert.Empty(t, decode[[]domain.Product](t, get(router, "/api/v1/products")))
}

func TestStoreUnavailableMapsTo503(t *testing.T) {
	store := memory.NewStore()
	store.Catalog = unavailableCatalog{store.Catalog}
	router, _ := newTestRouter(t, store)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/api/v1/products").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/api/v1/capital").Code)
}

func TestDriveMount(t *testing.T) {
	drive := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(r.URL.Path))
	})
	router := NewRouter(&Services{Drive: drive}, Options{})

	rec := get(router, "/api/drive/files?path=x")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "/api/drive/files", rec.Body.String())
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
