package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	googleSheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrFolderNotFound is returned when a folder path does not resolve.
var ErrFolderNotFound = errors.New("drive folder not found")

// Service is a read-only Google Drive client.
type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, errors.New("drive credentials are empty")
	}

	jwt, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

// File is the subset of Drive metadata the importer needs.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// ListFiles lists the non-trashed children of folderID, newest first. An empty
// folderID means the drive root.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	if folderID == "" {
		folderID = "root"
	}

	result, err := s.srv.Files.List().
		Context(ctx).
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("files(id, name, mimeType, modifiedTime, size)").
		OrderBy("modifiedTime desc").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}

	files := make([]File, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, File{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
		})
	}
	return files, nil
}

// Download returns the metadata and content of fileID. Native Google Sheets are
// exported as xlsx.
func (s *Service) Download(ctx context.Context, fileID string) (File, []byte, error) {
	meta, err := s.srv.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, mimeType, modifiedTime, size").
		Do()
	if err != nil {
		return File{}, nil, fmt.Errorf("get drive file %s: %w", fileID, err)
	}

	f := File{ID: meta.Id, Name: meta.Name, MimeType: meta.MimeType, ModifiedTime: meta.ModifiedTime, Size: meta.Size}

	var buf bytes.Buffer
	if meta.MimeType == googleSheetMimeType {
		resp, err := s.srv.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
		if err != nil {
			return File{}, nil, fmt.Errorf("export drive sheet %s: %w", fileID, err)
		}
		defer resp.Body.Close()
		if _, err := io.Copy(&buf, resp.Body); err != nil {
			return File{}, nil, fmt.Errorf("read drive export %s: %w", fileID, err)
		}
		f.Name += ".xlsx"
		return f, buf.Bytes(), nil
	}

	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return File{}, nil, fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return File{}, nil, fmt.Errorf("read drive file %s: %w", fileID, err)
	}
	return f, buf.Bytes(), nil
}

// FindFolderByPath walks a slash separated folder path from the drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Do()
		if err != nil {
			return "", fmt.Errorf("find drive folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		currentID = result.Files[0].Id
	}
	return currentID, nil
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `'`, `\'`)
}
