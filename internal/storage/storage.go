package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStorage captures the S3-compatible operations used for upload archiving
// and for ingesting files that already live in a bucket.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ArchiveKey places an uploaded file under kind/YYYY-MM-DD/batch-filename.
func ArchiveKey(kind, batchID, filename string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s/%s-%s", kind, at.UTC().Format("2006-01-02"), batchID, name)
}
