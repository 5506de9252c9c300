package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

// LedgerMode selects how a sales ingest lands in the ledger.
type LedgerMode string

const (
	// LedgerReplace treats each order export as the full history.
	LedgerReplace LedgerMode = "replace"
	// LedgerAppend adds the new events next to the existing ones.
	LedgerAppend LedgerMode = "append"
)

// ParseLedgerMode defaults to LedgerReplace for anything unrecognized.
func ParseLedgerMode(s string) LedgerMode {
	if LedgerMode(strings.ToLower(strings.TrimSpace(s))) == LedgerAppend {
		return LedgerAppend
	}
	return LedgerReplace
}

// LedgerWriter commits a fully decoded batch of sale events.
type LedgerWriter interface {
	Write(ctx context.Context, events []domain.SaleEvent) error
	Mode() LedgerMode
}

// NewLedgerWriter returns the writer for mode over repo.
func NewLedgerWriter(repo LedgerRepository, mode LedgerMode) LedgerWriter {
	if mode == LedgerAppend {
		return &appendWriter{repo: repo}
	}
	return &replaceWriter{repo: repo}
}

type replaceWriter struct {
	repo LedgerRepository
}

func (w *replaceWriter) Write(ctx context.Context, events []domain.SaleEvent) error {
	if err := w.repo.ReplaceAll(ctx, events); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (w *replaceWriter) Mode() LedgerMode { return LedgerReplace }

type appendWriter struct {
	repo LedgerRepository
}

func (w *appendWriter) Write(ctx context.Context, events []domain.SaleEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := w.repo.Insert(ctx, events); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

func (w *appendWriter) Mode() LedgerMode { return LedgerAppend }
