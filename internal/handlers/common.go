package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/models"
	"github.com/lehigh-university-libraries/pdcheck/internal/storage"
)

// Determiner produces status determinations. *copyright.Engine satisfies it.
type Determiner interface {
	Determine(ctx context.Context, q copyright.Query) (*copyright.Determination, error)
}

type Handler struct {
	lookupStore *storage.LookupStore
	engine      Determiner
}

func New(engine Determiner, store *storage.LookupStore) *Handler {
	if store == nil {
		store = storage.New(0)
	}
	return &Handler{
		lookupStore: store,
		engine:      engine,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/lookups", h.HandleLookups)
	mux.HandleFunc("/api/lookups/", h.HandleLookupDetail)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
	return mux
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

func (h *Handler) getLookupOrError(w http.ResponseWriter, id string) (*models.Lookup, bool) {
	lookup, exists := h.lookupStore.Get(id)
	if !exists {
		h.writeError(w, "Lookup not found", http.StatusNotFound)
		return nil, false
	}
	return lookup, true
}
