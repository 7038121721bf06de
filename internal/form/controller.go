// Package form drives the onboarding form: it stores formatted field values,
// tracks which fields were touched, runs the sync rule table, and reconciles
// the sync errors with the result of the remote corporation-number lookup.
//
// Every lookup is issued against a Ticket.  A result is only applied when its
// ticket is the most recent one and the corporation number has not been
// edited since the ticket was issued, so a slow response can never overwrite
// a newer, more authoritative one.
//
// The controller exposes blocking helpers (Blur, Submit) and a split-phase
// API (BeginLookup/ApplyLookup, PrepareSubmit/CompleteSubmit) for event loops
// that run the network call elsewhere and feed the result back.
package form

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"rhystmorgan/onboardTerm/internal/metrics"
	"rhystmorgan/onboardTerm/internal/utils"
	"rhystmorgan/onboardTerm/internal/validation"
)

// CorporationValidator is the remote lookup used for the corporation number.
type CorporationValidator interface {
	ValidateCorporationNumber(ctx context.Context, value string) (validation.ValidationResult, error)
}

// SubmitFunc receives the trimmed form values once every check passed.
type SubmitFunc func(ctx context.Context, data validation.ProfileFormData) error

type Options struct {
	Schema             *validation.Schema
	Validator          CorporationValidator
	OnSubmit           SubmitFunc
	OnValidationChange func(valid bool)
	Log                *zap.SugaredLogger
}

// Ticket identifies one issued lookup.
type Ticket struct {
	Value      string
	seq        uint64
	generation uint64
}

// SubmitPlan is returned by PrepareSubmit. When NeedsLookup is set the caller
// must run the lookup for Ticket.Value and pass the outcome to CompleteSubmit.
type SubmitPlan struct {
	NeedsLookup bool
	Ticket      Ticket
}

type Controller struct {
	schema             *validation.Schema
	validator          CorporationValidator
	onSubmit           SubmitFunc
	onValidationChange func(bool)
	log                *zap.SugaredLogger

	mu         sync.Mutex
	values     validation.ProfileFormData
	touched    map[validation.Field]bool
	syncErrors validation.FieldErrors

	// Async error state. asyncGeneric renders the localized generic message
	// at read time so a language switch also applies to it.
	asyncError   string
	asyncGeneric bool

	seq        uint64 // last issued ticket
	generation uint64 // bumped on every corporation-number edit and reset
	inFlight   bool

	notified  bool
	lastValid bool
}

func NewController(opts Options) *Controller {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c := &Controller{
		schema:             opts.Schema,
		validator:          opts.Validator,
		onSubmit:           opts.OnSubmit,
		onValidationChange: opts.OnValidationChange,
		log:                log,
		touched:            make(map[validation.Field]bool),
	}
	c.syncErrors = c.schema.Validate(c.values)
	return c
}

// Change formats text for field, stores it, and re-runs the sync rules. Editing
// the corporation number clears the async error and orphans any in-flight
// lookup. The stored (formatted) value is returned.
func (c *Controller) Change(field validation.Field, text string) string {
	c.mu.Lock()

	value := formatValue(field, text)
	c.values.Set(field, value)

	if field == validation.FieldCorporationNumber {
		c.clearAsyncLocked()
		c.generation++
		c.inFlight = false
	}

	c.syncErrors = c.schema.Validate(c.values)
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
	return value
}

// Touch marks field as blurred at least once and re-runs the sync rules.
func (c *Controller) Touch(field validation.Field) {
	c.mu.Lock()
	c.touched[field] = true
	c.syncErrors = c.schema.Validate(c.values)
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
}

// Blur is the blocking blur handler: it touches field and, for the
// corporation number, runs the remote lookup.
func (c *Controller) Blur(ctx context.Context, field validation.Field) {
	c.Touch(field)
	if field != validation.FieldCorporationNumber {
		return
	}

	ticket, ok := c.BeginLookup()
	if !ok {
		return
	}

	result, err := c.validator.ValidateCorporationNumber(ctx, ticket.Value)
	c.ApplyLookup(ticket, result, err)
}

// BeginLookup issues a ticket for the current corporation number. It returns
// false, and clears the async error, when the trimmed value is empty or not
// exactly nine characters long.
func (c *Controller) BeginLookup() (Ticket, bool) {
	c.mu.Lock()
	ticket, ok := c.beginLookupLocked()
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
	return ticket, ok
}

func (c *Controller) beginLookupLocked() (Ticket, bool) {
	value := strings.TrimSpace(c.values.CorporationNumber)
	if value == "" || len(value) != utils.CorporationNumberLen {
		c.clearAsyncLocked()
		return Ticket{}, false
	}

	c.seq++
	c.inFlight = true
	return Ticket{Value: value, seq: c.seq, generation: c.generation}, true
}

// ApplyLookup records the outcome of the lookup issued with ticket. It returns
// false when the ticket is stale and the outcome was discarded. Lookup errors
// are never propagated: they surface as the generic invalid message.
func (c *Controller) ApplyLookup(ticket Ticket, result validation.ValidationResult, err error) bool {
	c.mu.Lock()
	applied := c.applyLookupLocked(ticket, result, err)
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
	return applied
}

func (c *Controller) applyLookupLocked(ticket Ticket, result validation.ValidationResult, err error) bool {
	if ticket.seq != c.seq || ticket.generation != c.generation {
		metrics.StaleLookupsTotal.Inc()
		c.log.Debugw("discarding stale corporation lookup",
			"ticket", ticket.seq,
			"current", c.seq,
		)
		return false
	}
	c.inFlight = false

	switch {
	case err != nil:
		metrics.CorporationLookupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		c.log.Warnw("corporation lookup failed", "err", err)
		c.asyncError = ""
		c.asyncGeneric = true
	case !result.Valid:
		metrics.CorporationLookupsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.asyncError = strings.TrimSpace(result.Message)
		c.asyncGeneric = c.asyncError == ""
	default:
		metrics.CorporationLookupsTotal.WithLabelValues(metrics.OutcomeValid).Inc()
		c.clearAsyncLocked()
	}
	return true
}

// Submit is the blocking submit handler. It returns the values handed to the
// submit callback, whether the callback was invoked, and the callback's error.
func (c *Controller) Submit(ctx context.Context) (validation.ProfileFormData, bool, error) {
	plan, ok := c.PrepareSubmit()
	if !ok {
		return validation.ProfileFormData{}, false, nil
	}

	var (
		result validation.ValidationResult
		err    error
	)
	if plan.NeedsLookup {
		result, err = c.validator.ValidateCorporationNumber(ctx, plan.Ticket.Value)
	}

	data, ok := c.CompleteSubmit(plan, result, err)
	if !ok {
		return validation.ProfileFormData{}, false, nil
	}

	if c.onSubmit == nil {
		return data, true, nil
	}
	return data, true, c.onSubmit(ctx, data)
}

// PrepareSubmit touches every field and re-runs the sync rules. It returns
// false when any rule fails; otherwise the plan says whether the corporation
// number must be looked up again before submitting.
func (c *Controller) PrepareSubmit() (SubmitPlan, bool) {
	c.mu.Lock()
	for _, f := range validation.Fields {
		c.touched[f] = true
	}
	c.syncErrors = c.schema.Validate(c.values)

	var (
		plan    SubmitPlan
		failing = len(c.syncErrors)
		ok      = failing == 0
	)
	if ok && len(c.values.CorporationNumber) == utils.CorporationNumberLen {
		plan.Ticket, plan.NeedsLookup = c.beginLookupLocked()
	}
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
	if !ok {
		c.log.Debugw("submit blocked by field errors", "fields", failing)
	}
	return plan, ok
}

// CompleteSubmit applies the pre-submit lookup outcome and returns the
// trimmed values to submit. It returns false when the lookup reported the
// number invalid, failed, or was superseded by an edit.
func (c *Controller) CompleteSubmit(plan SubmitPlan, result validation.ValidationResult, err error) (validation.ProfileFormData, bool) {
	c.mu.Lock()
	ok := true
	if plan.NeedsLookup {
		ok = c.applyLookupLocked(plan.Ticket, result, err)
	}
	ok = ok && !c.hasAsyncErrorLocked() && !c.syncErrors.HasErrors()

	data := validation.ProfileFormData{
		FirstName:         strings.TrimSpace(c.values.FirstName),
		LastName:          strings.TrimSpace(c.values.LastName),
		Phone:             c.values.Phone,
		CorporationNumber: strings.TrimSpace(c.values.CorporationNumber),
	}
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
	if !ok {
		return validation.ProfileFormData{}, false
	}
	return data, true
}

// Reset restores empty defaults and forgets touched state, errors, and any
// in-flight lookup.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.values = validation.ProfileFormData{}
	c.touched = make(map[validation.Field]bool)
	c.clearAsyncLocked()
	c.generation++
	c.inFlight = false
	c.syncErrors = c.schema.Validate(c.values)
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
}

// Revalidate re-runs the sync rules, e.g. after the message locale changed.
func (c *Controller) Revalidate() {
	c.mu.Lock()
	c.syncErrors = c.schema.Validate(c.values)
	valid, notify := c.validityLocked()
	c.mu.Unlock()

	c.notify(valid, notify)
}

// DisplayedError is the single message shown under field. Sync errors appear
// only once the field was touched; for the corporation number a sync error
// takes precedence over the async one.
func (c *Controller) DisplayedError(field validation.Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var msg string
	if c.touched[field] {
		msg = c.syncErrors.Message(field)
	}
	if msg == "" && field == validation.FieldCorporationNumber {
		msg = c.asyncMessageLocked()
	}
	return msg
}

// IsValid reports whether every sync rule passes and no async error is set.
func (c *Controller) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isValidLocked()
}

func (c *Controller) Values() validation.ProfileFormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

func (c *Controller) Touched(field validation.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[field]
}

func (c *Controller) AsyncError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asyncMessageLocked()
}

// LookupPending reports whether a current (non-stale) lookup is in flight.
func (c *Controller) LookupPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) clearAsyncLocked() {
	c.asyncError = ""
	c.asyncGeneric = false
}

func (c *Controller) hasAsyncErrorLocked() bool {
	return c.asyncError != "" || c.asyncGeneric
}

func (c *Controller) asyncMessageLocked() string {
	if c.asyncGeneric {
		return c.schema.InvalidCorporationNumberMessage()
	}
	return c.asyncError
}

func (c *Controller) isValidLocked() bool {
	return !c.syncErrors.HasErrors() && !c.hasAsyncErrorLocked()
}

// validityLocked returns the current validity and whether it differs from the
// last value reported to OnValidationChange.
func (c *Controller) validityLocked() (bool, bool) {
	valid := c.isValidLocked()
	if c.notified && valid == c.lastValid {
		return valid, false
	}
	c.notified = true
	c.lastValid = valid
	return valid, true
}

// notify runs outside the lock so the callback may call back into c.
func (c *Controller) notify(valid, changed bool) {
	if changed && c.onValidationChange != nil {
		c.onValidationChange(valid)
	}
}

func formatValue(field validation.Field, text string) string {
	switch field {
	case validation.FieldPhone:
		return utils.FormatPhone(text)
	case validation.FieldCorporationNumber:
		return utils.FormatCorporationNumber(text)
	default:
		return text
	}
}
