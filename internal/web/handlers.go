package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/operadoras/internal/logging"
)

// indexMessage is the liveness text served at "/".
const indexMessage = "Servidor da API de Operadoras ANS está rodando!"

// handleIndex answers the liveness check.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, indexMessage)
}

// handleOperadoras serves the full dataset as a JSON array.
// The first request loads the file; later requests are served from memory.
func (s *Server) handleOperadoras(w http.ResponseWriter, r *http.Request) {
	ds, err := s.cache.Get(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	etag := `"` + ds.ID + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(ds.JSON()); err != nil {
		logging.FromContext(r.Context()).Warn("write dataset response", "error", err)
	}
}

// handleStatus reports cache metadata without triggering a load.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cache.Status())
}

// handleReload loads the file again and swaps it in on success.
// Mounted only when CACHE_RELOAD_ENABLED is set.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.cache.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("dataset reloaded", "load_id", ds.ID, "records", ds.Len())
	writeJSON(w, s.cache.Status())
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
