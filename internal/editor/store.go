package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-quotes/internal/events"
	"github.com/noah-isme/backend-quotes/internal/obs"
	"github.com/noah-isme/backend-quotes/internal/pricing"
	"github.com/noah-isme/backend-quotes/internal/quote"
)

// ErrSaveInFlight is returned when a save or load is requested while another
// one is still running.
var ErrSaveInFlight = errors.New("editor: save already in flight")

// ValidationError blocks a save locally; it never reaches the repository.
type ValidationError struct {
	Violation quote.Violation
}

func (e *ValidationError) Error() string { return e.Violation.Message }

// RepositoryError wraps a failed repository call during load or save. The
// message is surfaced verbatim as the store's error.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *RepositoryError) Unwrap() error { return e.Err }

// ProductPricer sources a product's current base price at assignment time.
type ProductPricer interface {
	ProductBasePrice(ctx context.Context, productID string) (float64, error)
}

// CustomerEmails resolves a customer's contact address so sent-quote events
// carry a recipient.
type CustomerEmails interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}

// Config groups Store dependencies.
type Config struct {
	Repo           quote.Repository
	Products       ProductPricer
	Customers      CustomerEmails
	Events         *events.Bus
	Logger         zerolog.Logger
	Metrics        *obs.SaveMetrics
	DefaultTaxRate float64
}

// Store holds one editing session's draft: the quote header fields, its
// lines, the pending-deletion queue, and the baseline snapshot used for dirty
// detection. It owns the save sequence that reconciles the draft against the
// repository's per-row primitives.
type Store struct {
	repo      quote.Repository
	products  ProductPricer
	customers CustomerEmails
	events    *events.Bus
	log       zerolog.Logger
	metrics   *obs.SaveMetrics

	defaultTaxRate float64

	mu            sync.Mutex
	quoteID       string
	customerID    string
	status        quote.Status
	taxRate       float64
	lines         []quote.Line
	subtotal      float64
	taxAmount     float64
	total         float64
	createdAt     time.Time
	loading       bool
	errMsg        string
	baseline      string
	pendingDelete []string
}

// State is a read-only view of the draft handed to the HTTP layer.
type State struct {
	QuoteID    string       `json:"quoteId,omitempty"`
	CustomerID string       `json:"customerId,omitempty"`
	Status     quote.Status `json:"status"`
	TaxRate    float64      `json:"taxRate"`
	Lines      []quote.Line `json:"lines"`
	Subtotal   float64      `json:"subtotal"`
	TaxAmount  float64      `json:"taxAmount"`
	Total      float64      `json:"total"`
	Saving     bool         `json:"saving"`
	Dirty      bool         `json:"dirty"`
	Valid      bool         `json:"valid"`
	CanSave    bool         `json:"canSave"`
	Error      string       `json:"error,omitempty"`
}

// LinePatch carries optional line field updates. Quantity is deliberately
// unconstrained here: values at or below zero clamp to 1 in UpdateLine.
type LinePatch struct {
	Quantity  *float64 `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
}

// NewStore constructs an empty draft store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Repo == nil {
		return nil, errors.New("editor: repository is required")
	}
	rate := cfg.DefaultTaxRate
	if rate < 0 || rate > 1 {
		rate = 0
	}
	s := &Store{
		repo:           cfg.Repo,
		products:       cfg.Products,
		customers:      cfg.Customers,
		events:         cfg.Events,
		log:            cfg.Logger,
		metrics:        cfg.Metrics,
		defaultTaxRate: rate,
	}
	s.resetLocked()
	return s, nil
}

// State returns the current draft state including derived flags.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	lines := make([]quote.Line, len(s.lines))
	copy(lines, s.lines)
	dirty := s.snapshotLocked() != s.baseline
	valid := quote.Validate(s.customerID, s.taxRate, s.lines) == nil
	return State{
		QuoteID:    s.quoteID,
		CustomerID: s.customerID,
		Status:     s.status,
		TaxRate:    s.taxRate,
		Lines:      lines,
		Subtotal:   s.subtotal,
		TaxAmount:  s.taxAmount,
		Total:      s.total,
		Saving:     s.loading,
		Dirty:      dirty,
		Valid:      valid,
		CanSave:    !s.loading && dirty && valid,
		Error:      s.errMsg,
	}
}

// PendingDeletions returns the persisted line ids queued for deletion.
func (s *Store) PendingDeletions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pendingDelete))
	copy(out, s.pendingDelete)
	return out
}

// Reset discards the draft and returns the store to an empty new document.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.quoteID = ""
	s.customerID = ""
	s.status = quote.StatusDraft
	s.taxRate = s.defaultTaxRate
	s.lines = nil
	s.subtotal = 0
	s.taxAmount = 0
	s.total = 0
	s.createdAt = time.Time{}
	s.loading = false
	s.errMsg = ""
	s.pendingDelete = nil
	s.baseline = s.snapshotLocked()
}

// Load replaces the draft with the persisted quote. On failure the prior
// in-memory state is left untouched.
func (s *Store) Load(ctx context.Context, quoteID string) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	q, err := s.repo.GetByID(ctx, quoteID)
	var lines []quote.Line
	if err == nil {
		lines, err = s.repo.ListLines(ctx, quoteID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		rerr := &RepositoryError{Op: "load quote", Err: err}
		s.errMsg = rerr.Error()
		return rerr
	}
	s.quoteID = q.ID
	s.customerID = q.CustomerID
	s.status = q.Status
	s.taxRate = q.TaxRate
	s.lines = lines
	s.subtotal = q.Subtotal
	s.taxAmount = q.TaxAmount
	s.total = q.Total
	s.createdAt = q.CreatedAt
	s.pendingDelete = nil
	s.baseline = s.snapshotLocked()
	return nil
}

// SetCustomer assigns the customer reference.
func (s *Store) SetCustomer(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerID = customerID
	s.recalcLocked()
}

// SetTaxRate assigns the tax rate. Out-of-range values are kept and reported
// by validation rather than silently corrected.
func (s *Store) SetTaxRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxRate = rate
	s.recalcLocked()
}

// SetStatus moves the document between draft, sent, and accepted.
func (s *Store) SetStatus(status quote.Status) error {
	if !status.Valid() {
		return fmt.Errorf("editor: invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.recalcLocked()
	return nil
}

// AddLine appends an empty line the user can fill in.
func (s *Store) AddLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, quote.Line{
		QuoteID:  s.quoteID,
		Quantity: 1,
	})
	s.recalcLocked()
}

// UpdateLine applies quantity/unit price edits to the line at index. A
// quantity at or below zero clamps to 1.
func (s *Store) UpdateLine(index int, patch LinePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("editor: line index %d out of range", index)
	}
	l := s.lines[index]
	if patch.Quantity != nil {
		l.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		l.UnitPrice = *patch.UnitPrice
	}
	if l.Quantity <= 0 {
		l.Quantity = 1
	}
	l.LineTotal = pricing.LineTotal(l.Quantity, l.UnitPrice)
	s.lines[index] = l
	s.recalcLocked()
	return nil
}

// IncrementQuantity raises the line's quantity by one.
func (s *Store) IncrementQuantity(index int) error {
	return s.bumpQuantity(index, 1)
}

// DecrementQuantity lowers the line's quantity by one, clamping at 1.
func (s *Store) DecrementQuantity(index int) error {
	return s.bumpQuantity(index, -1)
}

func (s *Store) bumpQuantity(index int, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("editor: line index %d out of range", index)
	}
	l := s.lines[index]
	l.Quantity += delta
	if l.Quantity <= 0 {
		l.Quantity = 1
	}
	l.LineTotal = pricing.LineTotal(l.Quantity, l.UnitPrice)
	s.lines[index] = l
	s.recalcLocked()
	return nil
}

// SetLineProduct assigns a product to the line at index, capturing the
// product's current base price. When another line already holds the product
// the lines are merged and the dropped line's persisted identity is queued
// for deletion.
func (s *Store) SetLineProduct(ctx context.Context, index int, productID string) error {
	if s.products == nil {
		return errors.New("editor: product pricer not configured")
	}
	price, err := s.products.ProductBasePrice(ctx, productID)
	if err != nil {
		return &RepositoryError{Op: "read product price", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := quote.AssignProduct(s.lines, index, productID, price)
	if err != nil {
		return err
	}
	s.lines = res.Lines
	if res.RemovedLineID != "" {
		s.pendingDelete = append(s.pendingDelete, res.RemovedLineID)
	}
	s.recalcLocked()
	return nil
}

// RemoveLine drops the line at index. A line that was already persisted is
// queued for deletion on the next save instead of being discarded.
func (s *Store) RemoveLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("editor: line index %d out of range", index)
	}
	if id := s.lines[index].ID; id != "" {
		s.pendingDelete = append(s.pendingDelete, id)
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.recalcLocked()
	return nil
}

type draftState struct {
	quoteID       string
	customerID    string
	status        quote.Status
	taxRate       float64
	subtotal      float64
	taxAmount     float64
	total         float64
	lines         []quote.Line
	pendingDelete []string
}

// Save validates the draft and reconciles it against the repository:
// create-header (for a new draft), update-header, queued deletions, then
// line upserts. A failure part-way leaves earlier writes in place; the
// repository offers no multi-row transaction to roll back with.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if v := quote.Validate(s.customerID, s.taxRate, s.lines); v != nil {
		s.errMsg = v.Message
		s.mu.Unlock()
		s.countSave("invalid")
		return &ValidationError{Violation: *v}
	}
	s.loading = true
	s.errMsg = ""
	draft := draftState{
		quoteID:       s.quoteID,
		customerID:    s.customerID,
		status:        s.status,
		taxRate:       s.taxRate,
		subtotal:      s.subtotal,
		taxAmount:     s.taxAmount,
		total:         s.total,
		lines:         make([]quote.Line, len(s.lines)),
		pendingDelete: make([]string, len(s.pendingDelete)),
	}
	copy(draft.lines, s.lines)
	copy(draft.pendingDelete, s.pendingDelete)
	s.mu.Unlock()

	err := s.persist(ctx, &draft)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.countSave("error")
		return err
	}
	s.baseline = quote.Snapshot(draft.customerID, draft.status, draft.taxRate, draft.lines)
	s.mu.Unlock()

	s.countSave("success")
	s.emitSaved(ctx, draft)
	return nil
}

func (s *Store) persist(ctx context.Context, d *draftState) error {
	if d.quoteID == "" {
		id, err := s.repo.Create(ctx, d.customerID, d.taxRate)
		if err != nil {
			return &RepositoryError{Op: "create quote", Err: err}
		}
		d.quoteID = id
		// Adopt immediately so a failed later step retries as an update.
		s.mu.Lock()
		s.quoteID = id
		s.mu.Unlock()
	}

	if err := s.repo.UpdateHeader(ctx, d.quoteID, quote.HeaderUpdate{
		CustomerID: d.customerID,
		Status:     d.status,
		TaxRate:    d.taxRate,
		Subtotal:   d.subtotal,
		TaxAmount:  d.taxAmount,
		Total:      d.total,
	}); err != nil {
		return &RepositoryError{Op: "update quote", Err: err}
	}

	for _, lineID := range d.pendingDelete {
		if err := s.repo.DeleteLine(ctx, lineID); err != nil {
			return &RepositoryError{Op: "delete line", Err: err}
		}
	}
	// The queue is cleared once every deletion in this attempt has been
	// issued, even if a later upsert fails.
	s.mu.Lock()
	s.dropIssuedDeletions(d.pendingDelete)
	s.mu.Unlock()

	for _, l := range d.lines {
		if l.ProductID == "" {
			continue
		}
		l.QuoteID = d.quoteID
		if err := s.repo.UpsertLine(ctx, l); err != nil {
			return &RepositoryError{Op: "upsert line", Err: err}
		}
	}
	return nil
}

// dropIssuedDeletions clears the identities deleted by the save attempt while
// keeping any queued by mutations that raced the save.
func (s *Store) dropIssuedDeletions(issued []string) {
	if len(issued) == 0 {
		return
	}
	done := make(map[string]struct{}, len(issued))
	for _, id := range issued {
		done[id] = struct{}{}
	}
	remaining := s.pendingDelete[:0]
	for _, id := range s.pendingDelete {
		if _, ok := done[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	s.pendingDelete = remaining
}

func (s *Store) emitSaved(ctx context.Context, d draftState) {
	if s.events == nil {
		return
	}
	topic := events.TopicQuoteSaved
	payload := map[string]any{
		"quoteId":    d.quoteID,
		"customerId": d.customerID,
		"status":     d.status,
		"total":      d.total,
	}
	if d.status == quote.StatusSent {
		topic = events.TopicQuoteSent
		if s.customers != nil {
			email, err := s.customers.CustomerEmail(ctx, d.customerID)
			switch {
			case err != nil:
				s.log.Debug().Err(err).Str("quote_id", d.quoteID).Msg("resolve customer email")
			case email != "":
				payload["customerEmail"] = email
			}
		}
	}
	if err := s.events.Emit(ctx, topic, d.quoteID, payload); err != nil {
		s.log.Error().Err(err).Str("quote_id", d.quoteID).Msg("emit save event")
	}
}

// Export reads the persisted quote and its lines fresh from the repository
// and packages them for download. A draft that was never saved exports
// nothing (nil, nil).
func (s *Store) Export(ctx context.Context) (*quote.Document, error) {
	s.mu.Lock()
	id := s.quoteID
	s.mu.Unlock()
	if id == "" {
		return nil, nil
	}
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &RepositoryError{Op: "export quote", Err: err}
	}
	lines, err := s.repo.ListLines(ctx, id)
	if err != nil {
		return nil, &RepositoryError{Op: "export lines", Err: err}
	}
	return &quote.Document{Quote: q, Lines: lines}, nil
}

func (s *Store) recalcLocked() {
	items := make([]pricing.Item, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.UnitPrice})
	}
	sum := pricing.Compute(items, s.taxRate)
	s.subtotal = sum.Subtotal
	s.taxAmount = sum.TaxAmount
	s.total = sum.Total
}

func (s *Store) snapshotLocked() string {
	return quote.Snapshot(s.customerID, s.status, s.taxRate, s.lines)
}

func (s *Store) countSave(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Attempts.WithLabelValues(outcome).Inc()
}
