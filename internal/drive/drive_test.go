package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

type fakeSource struct {
	files   []File
	folders map[string]string
	content map[string][]byte
}

func (f *fakeSource) ListFiles(_ context.Context, _ string) ([]File, error) {
	return f.files, nil
}

func (f *fakeSource) FindFolderByPath(_ context.Context, path string) (string, error) {
	if id, ok := f.folders[path]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrFolderNotFound, path)
}

func (f *fakeSource) Download(_ context.Context, fileID string) (File, []byte, error) {
	for _, file := range f.files {
		if file.ID == fileID {
			return file, f.content[fileID], nil
		}
	}
	return File{}, nil, fmt.Errorf("file %s not found", fileID)
}

type call struct {
	kind     Kind
	filename string
	data     string
}

type fakeIngester struct {
	calls []call
	err   error
}

func (f *fakeIngester) IngestStock(_ context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	f.calls = append(f.calls, call{KindStock, filename, string(data)})
	if f.err != nil {
		return nil, f.err
	}
	return &domain.IngestResult{Updated: 1, Message: "ok"}, nil
}

func (f *fakeIngester) IngestSales(_ context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	f.calls = append(f.calls, call{KindSales, filename, string(data)})
	if f.err != nil {
		return nil, f.err
	}
	return &domain.IngestResult{Processed: 1, Message: "ok"}, nil
}

func newFixture() (*fakeSource, *fakeIngester, http.Handler) {
	src := &fakeSource{
		files: []File{
			{ID: "a", Name: "stock-old.csv", ModifiedTime: "2024-05-01T10:00:00Z"},
			{ID: "b", Name: "notes.txt", ModifiedTime: "2024-05-09T10:00:00Z"},
			{ID: "c", Name: "stock-new.xlsx", ModifiedTime: "2024-05-03T10:00:00Z"},
			{ID: "d", Name: "Orders", MimeType: googleSheetMimeType, ModifiedTime: "2024-05-02T10:00:00Z"},
		},
		folders: map[string]string{"exports/stock": "folder-1"},
		content: map[string][]byte{"a": []byte("old"), "c": []byte("new"), "d": []byte("orders")},
	}
	ing := &fakeIngester{}
	h := NewHandler(src, NewImporter(src, ing))
	return src, ing, h.Router()
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Stock ")
	require.NoError(t, err)
	assert.Equal(t, KindStock, k)

	k, err = ParseKind("orders")
	require.NoError(t, err)
	assert.Equal(t, KindSales, k)

	_, err = ParseKind("invoices")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLatestTable(t *testing.T) {
	src, _, _ := newFixture()
	f, ok := latestTable(src.files)
	require.True(t, ok)
	assert.Equal(t, "c", f.ID)

	_, ok = latestTable([]File{{Name: "readme.md"}})
	assert.False(t, ok)
}

func TestImporter_ImportFileRoutesByKind(t *testing.T) {
	src, ing, _ := newFixture()
	imp := NewImporter(src, ing)

	_, err := imp.ImportFile(context.Background(), KindSales, "d")
	require.NoError(t, err)
	_, err = imp.ImportFile(context.Background(), KindStock, "a")
	require.NoError(t, err)

	require.Len(t, ing.calls, 2)
	assert.Equal(t, call{KindSales, "Orders", "orders"}, ing.calls[0])
	assert.Equal(t, call{KindStock, "stock-old.csv", "old"}, ing.calls[1])
}

func TestHandler_ListFilesByPath(t *testing.T) {
	_, _, router := newFixture()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/files?path=exports/stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var files []File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	assert.Len(t, files, 4)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/files?path=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_IngestLatestFromFolder(t *testing.T) {
	_, ing, router := newFixture()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/ingest?kind=stock&folderId=folder-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, ing.calls, 1)
	assert.Equal(t, "stock-new.xlsx", ing.calls[0].filename)

	var res domain.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Updated)
}

func TestHandler_IngestErrors(t *testing.T) {
	_, ing, router := newFixture()

	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"missing kind", "/api/drive/ingest?fileId=a", nil, http.StatusBadRequest},
		{"missing file", "/api/drive/ingest?kind=stock", nil, http.StatusBadRequest},
		{"bad table", "/api/drive/ingest?kind=sales&fileId=a", domain.ErrDecode, http.StatusUnprocessableEntity},
		{"store down", "/api/drive/ingest?kind=sales&fileId=a", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown file", "/api/drive/ingest?kind=sales&fileId=zzz", nil, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing.err = tt.err
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestHandler_GetIngestNotAllowed(t *testing.T) {
	_, _, router := newFixture()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/ingest?kind=stock&fileId=a", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
