package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/sirupsen/logrus"
)

// Operation names used in logs and metrics.
const (
	opLoad   = "load"
	opAdd    = "add"
	opDelete = "delete"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	clock   clock.Clock
	logger  logrus.FieldLogger
	metrics *observability.Metrics
}

// WithClock sets the clock used to default date_applied.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.Real(), logger: observability.DiscardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Manager holds one identity's ordered application list and keeps it in step
// with the store. The list is only touched under mu; store calls run unlocked,
// so concurrent operations apply their results in completion order.
type Manager struct {
	store   store.Client
	clock   clock.Clock
	log     logrus.FieldLogger
	metrics *observability.Metrics

	mu       sync.Mutex
	owner    string
	apps     []types.Application
	inFlight int
	loaded   bool
	skipped  int
}

// NewManager returns an empty, not yet loaded Manager.
func NewManager(client store.Client, opts ...Option) *Manager {
	o := buildOptions(opts)
	return &Manager{
		store:   client,
		clock:   o.clock,
		log:     o.logger,
		metrics: o.metrics,
	}
}

// Load replaces the list with ownerID's applications, newest first. On
// failure the list is left as it was.
func (m *Manager) Load(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return &ValidationError{Field: "owner_id", Message: "no identity"}
	}

	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()

	raws, err := m.store.Query(ctx, store.TableApplications,
		store.Where(store.Eq("user_id", ownerID)), store.Desc("date_applied"))

	log := m.log.WithField("owner_id", ownerID)

	if err != nil {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()

		log.WithError(err).Error("failed to load applications")
		loadErr := &LoadFailedError{OwnerID: ownerID, Cause: err}
		m.metrics.RecordOperation(opLoad, loadErr)
		return loadErr
	}

	apps := make([]types.Application, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		app, err := decodeApplication(raw)
		if err == nil && app.OwnerID != ownerID {
			err = &MalformedRecordError{ID: app.ID, Message: "record belongs to another identity"}
		}
		if err != nil {
			skipped++
			log.WithError(err).Warn("skipping malformed application record")
			continue
		}
		apps = append(apps, app)
	}

	m.mu.Lock()
	m.inFlight--
	m.owner = ownerID
	m.apps = apps
	m.loaded = true
	m.skipped = skipped
	m.mu.Unlock()

	m.metrics.RecordMalformed(skipped)
	m.metrics.RecordOperation(opLoad, nil)
	log.WithField("count", len(apps)).Info("loaded applications")
	return nil
}

// Add validates draft, inserts it for ownerID and prepends the stored result.
// Status defaults to applied and the date to now.
func (m *Manager) Add(ctx context.Context, ownerID string, draft types.Draft) (types.Application, error) {
	if ownerID == "" {
		return types.Application{}, &ValidationError{Field: "owner_id", Message: "no identity"}
	}

	m.mu.Lock()
	current := m.owner
	m.mu.Unlock()
	if current != "" && current != ownerID {
		return types.Application{}, &ValidationError{Field: "owner_id", Message: "list belongs to another identity"}
	}

	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return types.Application{}, validationError(err)
	}

	app := types.Application{
		OwnerID:     ownerID,
		Company:     draft.Company,
		Position:    draft.Position,
		Status:      draft.Status,
		DateApplied: m.clock.Now(),
		Location:    draft.Location,
		Notes:       draft.Notes,
	}
	if app.Status == "" {
		app.Status = types.StatusApplied
	}
	if draft.DateApplied != nil {
		app.DateApplied = *draft.DateApplied
	}

	log := m.log.WithField("owner_id", ownerID)

	raw, err := m.store.Insert(ctx, store.TableApplications, ToWire(app))
	if err == nil {
		app, err = decodeApplication(raw)
	}
	if err == nil && app.OwnerID != ownerID {
		err = &MalformedRecordError{ID: app.ID, Message: "record belongs to another identity"}
	}
	if err != nil {
		log.WithError(err).Error("failed to add application")
		addErr := &AddFailedError{Company: draft.Company, Cause: err}
		m.metrics.RecordOperation(opAdd, addErr)
		return types.Application{}, addErr
	}

	m.mu.Lock()
	if m.owner == "" {
		m.owner = ownerID
	}
	// A Load that finished after the insert committed may already hold the row.
	m.apps = append([]types.Application{app}, withoutID(m.apps, app.ID)...)
	m.mu.Unlock()

	m.metrics.RecordOperation(opAdd, nil)
	log.WithField("application_id", app.ID).Info("added application")
	return app, nil
}

// Delete removes the application with id from the store and then from the
// list. An id not in the list still reaches the store and is a local no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "required"}
	}

	m.mu.Lock()
	owner := m.owner
	m.mu.Unlock()

	filter := store.Where(store.Eq("id", id))
	if owner != "" {
		filter = append(filter, store.Eq("user_id", owner))
	}

	log := m.log.WithField("owner_id", owner).WithField("application_id", id)

	if err := m.store.Delete(ctx, store.TableApplications, filter); err != nil {
		log.WithError(err).Error("failed to delete application")
		delErr := &DeleteFailedError{ID: id, Cause: err}
		m.metrics.RecordOperation(opDelete, delErr)
		return delErr
	}

	m.mu.Lock()
	m.apps = withoutID(m.apps, id)
	m.mu.Unlock()

	m.metrics.RecordOperation(opDelete, nil)
	log.Info("deleted application")
	return nil
}

// Statistics counts the list by status.
func (m *Manager) Statistics() types.Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return deriveStatistics(m.apps)
}

// Filter returns the applications whose company or position contains query,
// ignoring case. An empty query returns the whole list.
func (m *Manager) Filter(query string) []types.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterApplications(m.apps, query)
}

// List returns a copy of the list in display order.
func (m *Manager) List() []types.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Application(nil), m.apps...)
}

// IsLoading reports whether a Load is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight > 0
}

// Loaded reports whether any Load has succeeded.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Skipped is the number of malformed rows dropped by the last successful Load.
func (m *Manager) Skipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

func decodeApplication(raw json.RawMessage) (types.Application, error) {
	rec, err := DecodeWire(raw)
	if err != nil {
		return types.Application{}, err
	}
	return FromWire(rec)
}

// withoutID returns apps minus the entry with id, preserving order. apps is
// returned as is when no entry matches.
func withoutID(apps []types.Application, id string) []types.Application {
	for i, app := range apps {
		if app.ID == id {
			return append(apps[:i:i], apps[i+1:]...)
		}
	}
	return apps
}

func deriveStatistics(apps []types.Application) types.Statistics {
	stats := types.Statistics{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case types.StatusApplied:
			stats.Applied++
		case types.StatusInterview:
			stats.Interview++
		case types.StatusOffer:
			stats.Offer++
		case types.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

func filterApplications(apps []types.Application, query string) []types.Application {
	out := make([]types.Application, 0, len(apps))
	if query == "" {
		return append(out, apps...)
	}

	q := strings.ToLower(query)
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Company), q) || strings.Contains(strings.ToLower(app.Position), q) {
			out = append(out, app)
		}
	}
	return out
}

// validationError converts validator output into a ValidationError naming the first bad field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return &ValidationError{Field: field, Message: "required"}
		case "oneof":
			return &ValidationError{Field: field, Message: "must be one of " + fe.Param()}
		default:
			return &ValidationError{Field: field, Message: fe.Error()}
		}
	}
	return &ValidationError{Field: "draft", Message: err.Error()}
}
