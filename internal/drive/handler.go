package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Browser is the part of Service the handler exposes directly.
type Browser interface {
	FileSource
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Handler struct {
	browser       Browser
	ingestService *IngestService
}

func NewHandler(browser Browser, ingestService *IngestService) *Handler {
	return &Handler{
		browser:       browser,
		ingestService: ingestService,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/sync", h.SyncDatasets).Methods(http.MethodPost)
	router.HandleFunc("/api/drive/ingest", h.IngestDatasets).Methods(http.MethodPost)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")

	if folderPath := query.Get("path"); folderPath != "" {
		var err error
		folderID, err = h.browser.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
	}

	files, err := h.browser.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, errors.New("fileId parameter is required"))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment")

	if err := h.browser.DownloadFile(r.Context(), fileID, w); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Drive download failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SyncDatasets(w http.ResponseWriter, r *http.Request) {
	paths, err := h.ingestService.Sync(r.Context(), r.URL.Query().Get("folderId"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "files": paths})
}

func (h *Handler) IngestDatasets(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ingestService.Ingest(r.Context(), r.URL.Query().Get("folderId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"sales":     len(ds.Sales),
		"inventory": len(ds.Inventory),
		"products":  len(ds.Products),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
