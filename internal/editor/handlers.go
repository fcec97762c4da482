package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-quotes/internal/common"
	"github.com/noah-isme/backend-quotes/internal/quote"
)

// Handler exposes the editing session API.
type Handler struct {
	manager  *Manager
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Manager  *Manager
	Validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validate
	if v == nil {
		v = validator.New()
	}
	return &Handler{manager: cfg.Manager, validate: v}
}

// Routes mounts the editor endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetState)
		r.Patch("/", h.PatchHeader)
		r.Delete("/", h.DeleteSession)
		r.Post("/load", h.LoadQuote)
		r.Post("/save", h.Save)
		r.Get("/export", h.Export)
		r.Post("/lines", h.AddLine)
		r.Route("/lines/{index}", func(r chi.Router) {
			r.Patch("/", h.UpdateLine)
			r.Delete("/", h.RemoveLine)
			r.Post("/product", h.SetProduct)
			r.Post("/increment", h.Increment)
			r.Post("/decrement", h.Decrement)
		})
	})
	return r
}

type createSessionRequest struct {
	QuoteID string `json:"quoteId"`
}

// CreateSession opens a new session, optionally loading an existing quote.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "editor not configured", nil)
		return
	}
	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
	}
	id, store, err := h.manager.Create()
	if err != nil {
		h.writeError(w, err)
		return
	}
	if req.QuoteID != "" {
		if err := store.Load(r.Context(), req.QuoteID); err != nil {
			h.manager.Delete(id)
			h.writeError(w, err)
			return
		}
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"sessionId": id,
		"data":      store.State(),
	})
}

// GetState returns the current draft state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// DeleteSession destroys the session and its draft.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "editor not configured", nil)
		return
	}
	h.manager.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

type loadRequest struct {
	QuoteID string `json:"quoteId" validate:"required,uuid4"`
}

// LoadQuote replaces the draft with a persisted quote.
func (h *Handler) LoadQuote(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	var req loadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := store.Load(r.Context(), req.QuoteID); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

type patchHeaderRequest struct {
	CustomerID *string  `json:"customerId" validate:"omitempty,uuid4"`
	Status     *string  `json:"status"`
	TaxRate    *float64 `json:"taxRate"`
}

// PatchHeader applies customer, status, and tax rate edits.
func (h *Handler) PatchHeader(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	var req patchHeaderRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.CustomerID != nil {
		store.SetCustomer(*req.CustomerID)
	}
	if req.Status != nil {
		if err := store.SetStatus(quote.Status(*req.Status)); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	if req.TaxRate != nil {
		store.SetTaxRate(*req.TaxRate)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// AddLine appends an empty line to the draft.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.AddLine()
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// UpdateLine applies quantity/unit price edits to a line.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	var patch LinePatch
	if !h.decode(w, r, &patch) {
		return
	}
	if err := store.UpdateLine(index, patch); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

type setProductRequest struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

// SetProduct assigns a product to a line, merging duplicate-product lines.
func (h *Handler) SetProduct(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	var req setProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := store.SetLineProduct(r.Context(), index, req.ProductID); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// Increment raises a line's quantity by one.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.bump(w, r, (*Store).IncrementQuantity)
}

// Decrement lowers a line's quantity by one.
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.bump(w, r, (*Store).DecrementQuantity)
}

func (h *Handler) bump(w http.ResponseWriter, r *http.Request, fn func(*Store, int) error) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	if err := fn(store, index); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// RemoveLine drops a line, queueing persisted lines for deletion.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	if err := store.RemoveLine(index); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// Save persists the draft through the save sequence.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	if err := store.Save(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": store.State()})
}

// Export downloads the persisted document. An unsaved draft yields 204.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	doc, err := store.Export(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if doc == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quote-"+doc.Quote.ID+".json"))
	common.JSON(w, http.StatusOK, doc)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	if h.manager == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "editor not configured", nil)
		return nil, false
	}
	store, err := h.manager.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "editing session not found", nil)
		return nil, false
	}
	return store, true
}

func (h *Handler) lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line index", nil)
		return 0, false
	}
	return index, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		common.JSONError(w, http.StatusUnprocessableEntity, vErr.Violation.Code, vErr.Violation.Message, nil)
		return
	}
	var rErr *RepositoryError
	if errors.As(err, &rErr) {
		common.JSONError(w, http.StatusBadGateway, "REPOSITORY", rErr.Error(), nil)
		return
	}
	if errors.Is(err, ErrSaveInFlight) {
		common.JSONError(w, http.StatusConflict, "SAVE_IN_FLIGHT", "a save is already in progress", nil)
		return
	}
	if errors.Is(err, ErrSessionNotFound) {
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "editing session not found", nil)
		return
	}
	common.WriteError(w, err)
}
