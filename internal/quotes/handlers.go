package quotes

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-quotes/internal/common"
)

// Handler exposes persisted-quote endpoints.
type Handler struct {
	service      *Service
	defaultLimit int
	maxLimit     int
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service      *Service
	DefaultLimit int
	MaxLimit     int
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = 50
	}
	max := cfg.MaxLimit
	if max <= 0 {
		max = 200
	}
	return &Handler{service: cfg.Service, defaultLimit: limit, maxLimit: max}
}

// List handles GET /api/v1/quotes with an optional status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quotes service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.defaultLimit, h.maxLimit)
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	rows, total, err := h.service.List(r.Context(), status, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quotes service not configured", nil)
		return
	}
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// ExportJSON handles GET /api/v1/quotes/{id}/export and downloads the
// document as JSON.
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quotes service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := h.service.ExportDocument(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quote-"+id+".json"))
	common.JSON(w, http.StatusOK, doc)
}

// ExportPDF handles GET /api/v1/quotes/{id}/export.pdf.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quotes service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	data, err := h.service.ExportPDF(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quote-"+id+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
