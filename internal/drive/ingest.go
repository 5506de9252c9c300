package drive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

// Kind says which ingest a Drive file feeds.
type Kind string

const (
	KindStock Kind = "stock"
	KindSales Kind = "sales"
)

var (
	ErrUnknownKind = errors.New("unknown ingest kind")
	ErrNoTable     = errors.New("no csv or xlsx file in folder")
)

func ParseKind(v string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(v))) {
	case KindStock:
		return KindStock, nil
	case KindSales, "orders":
		return KindSales, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, v)
	}
}

// Source is the Drive surface the importer reads from.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
	Download(ctx context.Context, fileID string) (File, []byte, error)
}

// Ingester accepts raw uploads. *service.IngestService satisfies it.
type Ingester interface {
	IngestStock(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error)
	IngestSales(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error)
}

// Importer pulls exports from Drive and hands them to the ingest pipeline.
type Importer struct {
	source   Source
	ingester Ingester
}

func NewImporter(source Source, ingester Ingester) *Importer {
	return &Importer{source: source, ingester: ingester}
}

// ImportFile downloads fileID and ingests it as kind.
func (i *Importer) ImportFile(ctx context.Context, kind Kind, fileID string) (*domain.IngestResult, error) {
	f, data, err := i.source.Download(ctx, fileID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("file_id", f.ID).Str("name", f.Name).Str("kind", string(kind)).Int("bytes", len(data)).Msg("drive: importing file")

	switch kind {
	case KindStock:
		return i.ingester.IngestStock(ctx, f.Name, data)
	case KindSales:
		return i.ingester.IngestSales(ctx, f.Name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ImportLatest ingests the most recently modified table in folderID.
func (i *Importer) ImportLatest(ctx context.Context, kind Kind, folderID string) (*domain.IngestResult, error) {
	files, err := i.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	latest, ok := latestTable(files)
	if !ok {
		return nil, ErrNoTable
	}
	return i.ImportFile(ctx, kind, latest.ID)
}

// latestTable picks the newest csv, xlsx or native sheet. ModifiedTime is RFC 3339
// so it orders lexically.
func latestTable(files []File) (File, bool) {
	var (
		best  File
		found bool
	)
	for _, f := range files {
		if !isTable(f) {
			continue
		}
		if !found || f.ModifiedTime > best.ModifiedTime {
			best, found = f, true
		}
	}
	return best, found
}

func isTable(f File) bool {
	if f.MimeType == googleSheetMimeType {
		return true
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
