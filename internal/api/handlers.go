package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/autosource/supplier-scout/internal/database"
	"github.com/autosource/supplier-scout/internal/models"
)

// RunService is the slice of the job manager the API needs.
type RunService interface {
	CreateRun(ctx context.Context, imagePath string) (*database.SearchRun, error)
	GetRun(ctx context.Context, id string) (*database.SearchRun, error)
	ListRuns(ctx context.Context, limit int) ([]*database.SearchRun, error)
	RunSuppliers(ctx context.Context, runID string) ([]models.Supplier, error)
}

type Handlers struct {
	jobs   RunService
	logger *slog.Logger
}

func NewHandlers(jobs RunService, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		logger: logger.With("component", "api"),
	}
}

func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", h.CreateSearch)
		r.Get("/searches", h.ListSearches)
		r.Get("/searches/{id}", h.GetSearch)
	})
}

// CreateSearchRequest queues a reverse-image supplier search.
type CreateSearchRequest struct {
	ImagePath string `json:"image_path"`
}

type SearchRunResponse struct {
	ID            string                    `json:"id"`
	ImagePath     string                    `json:"image_path"`
	Status        string                    `json:"status"`
	SupplierCount int                       `json:"supplier_count"`
	Degraded      bool                      `json:"degraded"`
	ArtifactPath  string                    `json:"artifact_path,omitempty"`
	Error         string                    `json:"error,omitempty"`
	Suppliers     []models.Supplier         `json:"suppliers,omitempty"`
	Diagnostics   []models.DiagnosticSample `json:"diagnostics,omitempty"`
}

func (h *Handlers) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var req CreateSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ImagePath == "" {
		h.respondError(w, http.StatusBadRequest, "image_path is required")
		return
	}

	run, err := h.jobs.CreateRun(r.Context(), req.ImagePath)
	if err != nil {
		h.logger.Error("failed to create search run", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create search run")
		return
	}

	h.respondJSON(w, http.StatusAccepted, runResponse(run))
}

func (h *Handlers) GetSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.jobs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			h.respondError(w, http.StatusNotFound, "search run not found")
			return
		}
		h.logger.Error("failed to get search run", "id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get search run")
		return
	}

	resp := runResponse(run)
	resp.Diagnostics = run.Diagnostics

	if run.Status == database.RunCompleted || run.Status == database.RunDegraded {
		suppliers, err := h.jobs.RunSuppliers(r.Context(), id)
		if err != nil {
			h.logger.Error("failed to load run suppliers", "id", id, "error", err)
		} else {
			resp.Suppliers = suppliers
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListSearches(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.jobs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list search runs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list search runs")
		return
	}

	resp := make([]*SearchRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, runResponse(run))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func runResponse(run *database.SearchRun) *SearchRunResponse {
	resp := &SearchRunResponse{
		ID:            run.ID,
		ImagePath:     run.ImagePath,
		Status:        string(run.Status),
		SupplierCount: run.SupplierCount,
		Degraded:      run.Degraded,
	}
	if run.ArtifactPath.Valid {
		resp.ArtifactPath = run.ArtifactPath.String
	}
	if run.ErrorMessage.Valid {
		resp.Error = run.ErrorMessage.String
	}
	return resp
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
