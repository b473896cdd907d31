package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/models"
	"github.com/lehigh-university-libraries/pdcheck/internal/registration"
)

// maxRequestBody bounds a lookup request body.
const maxRequestBody = 64 * 1024

func (h *Handler) HandleLookups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.lookupStore.List())
	case http.MethodPost:
		h.createLookup(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleLookupDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/lookups/")

	lookup, ok := h.getLookupOrError(w, id)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, lookup)
	case http.MethodDelete:
		h.lookupStore.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createLookup(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	lookup := &models.Lookup{
		ID:        uuid.NewString(),
		Request:   req,
		CreatedAt: time.Now(),
	}

	start := time.Now()
	d, err := h.engine.Determine(r.Context(), copyright.Query{Author: req.Author, Title: req.Title, Year: req.Year})
	lookup.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, copyright.ErrFullScanNotAllowed):
			h.writeError(w, "A publication year is required: "+err.Error(), http.StatusUnprocessableEntity)
		case r.Context().Err() != nil:
			slog.Info("Lookup cancelled by client", "id", lookup.ID)
		case errors.Is(err, registration.ErrUnparsableContainer):
			lookup.Error = err.Error()
			h.lookupStore.Set(lookup.ID, lookup)
			h.writeError(w, "Registration corpus is damaged: "+err.Error(), http.StatusInternalServerError)
		default:
			lookup.Error = err.Error()
			h.lookupStore.Set(lookup.ID, lookup)
			h.writeError(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	lookup.Determination = d
	h.lookupStore.Set(lookup.ID, lookup)
	slog.Info("Lookup completed", "id", lookup.ID, "status", d.Status, "duration_ms", lookup.DurationMS)
	h.writeJSON(w, http.StatusCreated, lookup)
}
