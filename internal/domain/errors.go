package domain

import "errors"

var (
	// ErrDecode marks input that is not a readable table. No store mutation happens.
	ErrDecode = errors.New("file is not a valid table")

	// ErrNoSheet marks a workbook without any usable sheet.
	ErrNoSheet = errors.New("no sheet found")

	// ErrStoreUnavailable marks a persistence layer that cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrProcessing marks an ingest that failed for any other reason, including timeouts.
	ErrProcessing = errors.New("processing failed")

	ErrNotFound = errors.New("not found")
)
