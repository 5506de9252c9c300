package drive

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

type Handler struct {
	source   Source
	importer *Importer
}

func NewHandler(source Source, importer *Importer) *Handler {
	return &Handler{source: source, importer: importer}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/ingest", h.Ingest).Methods(http.MethodPost)
}

// Router returns a standalone mux router with the drive routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	folderID := query.Get("folderId")

	if path := query.Get("path"); path != "" {
		id, err := h.source.FindFolderByPath(ctx, path)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		folderID = id
	}

	files, err := h.source.ListFiles(ctx, folderID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Ingest imports ?fileId= or, without it, the newest table in ?folderId=.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	kind, err := ParseKind(query.Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var res *domain.IngestResult
	switch fileID, folderID := query.Get("fileId"), query.Get("folderId"); {
	case fileID != "":
		res, err = h.importer.ImportFile(ctx, kind, fileID)
	case folderID != "":
		res, err = h.importer.ImportLatest(ctx, kind, folderID)
	default:
		writeError(w, http.StatusBadRequest, errors.New("fileId or folderId parameter is required"))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDecode), errors.Is(err, ErrNoTable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrProcessing):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Error().Err(err).Int("status", status).Msg("drive: request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("drive: encode response failed")
	}
}
