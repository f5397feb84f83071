package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filedepot/storage-access-backend/interfaces"
	"github.com/filedepot/storage-access-backend/storage"
)

// Handler exposes the storage facade over HTTP. It contains no storage
// logic of its own; every request maps 1:1 onto a facade operation and the
// facade's error kinds map onto status codes.
type Handler struct {
	storage *storage.Storage
	log     *slog.Logger
}

// NewHandler creates a files API handler backed by the given facade.
func NewHandler(store *storage.Storage, log *slog.Logger) *Handler {
	return &Handler{storage: store, log: log}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, interfaces.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForError(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// HandleUpload stores the request body under the filename from the URL.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "*")
	if filename == "" {
		http.Error(w, "missing filename", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.Save(r.Context(), filename, data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleFetch returns the file content. With ?stream=true the payload is
// copied from the backend to the response without buffering it in memory.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "*")
	if filename == "" {
		http.Error(w, "missing filename", http.StatusBadRequest)
		return
	}

	stream := r.URL.Query().Get("stream") == "true"
	rc, err := h.storage.Load(r.Context(), filename, stream)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log the broken transfer.
		h.log.Error("Failed to stream response",
			slog.String("filename", filename),
			"err", err)
	}
}

// HandleExists answers HEAD requests with 200 or 404 and no body.
func (h *Handler) HandleExists(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "*")
	if filename == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ok, err := h.storage.Exists(r.Context(), filename)
	if err != nil {
		w.WriteHeader(statusForError(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDelete removes the file. Deleting an absent file succeeds.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "*")
	if filename == "" {
		http.Error(w, "missing filename", http.StatusBadRequest)
		return
	}

	if err := h.storage.Delete(r.Context(), filename); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
