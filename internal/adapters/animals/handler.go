// Package animals exposes the animal registry over HTTP.
package animals

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"zookeeper/internal/core"
	"zookeeper/pkg/domain"
)

const (
	apiPrefix = "/api/animals"

	msgNotFound     = "animal not found"
	msgBadFormat    = "The animal is not properly formatted."
	msgPersistence  = "failed to persist animal"
	maxRequestBytes = 1 << 20
)

// Handler serves the /api/animals routes.
type Handler struct {
	Service *core.Service
	Logger  core.Logger
}

// NewHandler constructs an animals HTTP handler.
func NewHandler(svc *core.Service, logger core.Logger) *Handler {
	return &Handler{Service: svc, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "animal service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == apiPrefix:
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case strings.HasPrefix(path, apiPrefix+"/"):
		id := strings.TrimPrefix(path, apiPrefix+"/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleGet(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	criteria := domain.CriteriaFromValues(r.URL.Query())
	writeJSON(w, http.StatusOK, h.Service.ListAnimals(r.Context(), criteria))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	animal, err := h.Service.GetAnimal(r.Context(), id)
	if err != nil {
		var nf domain.ErrNotFound
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, animal)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	var animal domain.Animal
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		animal, err = h.Service.CreateAnimalForm(r.Context(), body)
	} else {
		animal, err = h.Service.CreateAnimalJSON(r.Context(), body)
	}
	if err != nil {
		h.writeCreateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, animal)
}

func (h *Handler) writeCreateError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  msgBadFormat,
			"fields": ve.Fields,
		})
		return
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		if h.Logger != nil {
			h.Logger.Error("append failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, msgPersistence)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
