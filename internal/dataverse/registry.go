package dataverse

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	logpkg "github.com/Leon4s4/dynamics-mcp/internal/log"
	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// EndpointStatus is a point-in-time view of one registered endpoint.
type EndpointStatus struct {
	ID           string    `json:"endpoint_id"`
	BaseURL      string    `json:"base_url"`
	RegisteredAt time.Time `json:"registered_at"`
	RefreshedAt  time.Time `json:"refreshed_at"`
	RecordTypes  int       `json:"record_types"`
	Operations   int       `json:"operations"`
}

// Registry owns the full lifecycle of registered endpoints: credential
// validation, token acquisition, schema introspection, catalog maintenance,
// and operation dispatch. It is an explicitly constructed object passed to
// the hosting layer by reference; there is no ambient static state.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*endpointState

	catalog    *Catalog
	executor   *Executor
	tokens     TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

type endpointState struct {
	session     *Session
	creds       Credentials
	recordTypes int
	refreshedAt time.Time
}

// NewRegistry creates a registry. tokens must be non-nil; httpClient nil
// falls back to http.DefaultClient; logger nil discards to slog default.
func NewRegistry(tokens TokenProvider, httpClient *http.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		endpoints:  make(map[string]*endpointState),
		catalog:    NewCatalog(),
		executor:   NewExecutor(),
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Catalog exposes the registry's operation catalog for read access.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// Register validates credentials, acquires a token, introspects the remote
// schema, and installs the synthesized catalog. On any failure the endpoint
// is left unregistered.
func (r *Registry) Register(ctx context.Context, creds Credentials) (EndpointStatus, error) {
	if err := creds.Validate(); err != nil {
		return EndpointStatus{}, err
	}
	r.logger.Debug("registering endpoint", slog.Any("credentials", creds))

	token, err := r.tokens.AccessToken(ctx, creds)
	if err != nil {
		return EndpointStatus{}, err
	}
	r.logger.Debug("access token acquired", slog.String("token", logpkg.SanitizeToken(token)))

	session := NewSession(creds.URL, token, r.httpClient)
	ops, recordTypes, err := r.introspect(ctx, session)
	if err != nil {
		return EndpointStatus{}, err
	}

	state := &endpointState{
		session:     session,
		creds:       creds,
		recordTypes: recordTypes,
		refreshedAt: time.Now().UTC(),
	}

	r.catalog.ReplaceAll(session.ID, ops)
	r.mu.Lock()
	r.endpoints[session.ID] = state
	status := r.statusLocked(session.ID, state)
	r.mu.Unlock()

	r.logger.Info("endpoint registered",
		slog.String(logpkg.EndpointKey, session.ID),
		slog.String("base_url", session.BaseURL),
		slog.Int("record_types", recordTypes),
		slog.Int("operations", len(ops)),
	)
	return status, nil
}

// Refresh repeats discovery for a registered endpoint and atomically replaces
// its catalog. A failed refresh leaves the previous catalog untouched: the
// replacement happens only after the full new operation set is assembled.
func (r *Registry) Refresh(ctx context.Context, endpointID string) (EndpointStatus, error) {
	logger := logpkg.WithEndpoint(r.logger, endpointID)

	r.mu.RLock()
	state, ok := r.endpoints[endpointID]
	var creds Credentials
	var createdAt time.Time
	if ok {
		creds = state.creds
		createdAt = state.session.CreatedAt
	}
	r.mu.RUnlock()
	if !ok {
		return EndpointStatus{}, &errors.NotFoundError{Resource: "endpoint", ID: endpointID}
	}

	token, err := r.tokens.AccessToken(ctx, creds)
	if err != nil {
		return EndpointStatus{}, err
	}

	// Replacement session keeps the endpoint's identity.
	session := NewSession(creds.URL, token, r.httpClient)
	session.ID = endpointID
	session.CreatedAt = createdAt

	ops, recordTypes, err := r.introspect(ctx, session)
	if err != nil {
		logger.Warn("endpoint refresh failed, keeping previous catalog", slog.Any("error", err))
		return EndpointStatus{}, err
	}

	r.catalog.ReplaceAll(endpointID, ops)
	r.mu.Lock()
	state.session = session
	state.recordTypes = recordTypes
	state.refreshedAt = time.Now().UTC()
	status := r.statusLocked(endpointID, state)
	r.mu.Unlock()

	logger.Info("endpoint refreshed",
		slog.Int("record_types", recordTypes),
		slog.Int("operations", len(ops)),
	)
	return status, nil
}

// Unregister removes an endpoint and its catalog entry. Unknown ids are
// reported, not ignored.
func (r *Registry) Unregister(endpointID string) error {
	r.mu.Lock()
	_, ok := r.endpoints[endpointID]
	if ok {
		delete(r.endpoints, endpointID)
	}
	r.mu.Unlock()
	if !ok {
		return &errors.NotFoundError{Resource: "endpoint", ID: endpointID}
	}
	r.catalog.Remove(endpointID)
	r.logger.Info("endpoint unregistered", slog.String(logpkg.EndpointKey, endpointID))
	return nil
}

// Status reports the current state of one endpoint.
func (r *Registry) Status(endpointID string) (EndpointStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.endpoints[endpointID]
	if !ok {
		return EndpointStatus{}, &errors.NotFoundError{Resource: "endpoint", ID: endpointID}
	}
	return r.statusLocked(endpointID, state), nil
}

// EndpointIDs lists the registered endpoint ids.
func (r *Registry) EndpointIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.endpoints))
	for id := range r.endpoints {
		ids = append(ids, id)
	}
	return ids
}

// ListOperations returns the synthesized operations for an endpoint grouped
// by record type.
func (r *Registry) ListOperations(endpointID string) (map[string][]Operation, error) {
	r.mu.RLock()
	_, ok := r.endpoints[endpointID]
	r.mu.RUnlock()
	if !ok {
		return nil, &errors.NotFoundError{Resource: "endpoint", ID: endpointID}
	}
	return r.catalog.GroupedByRecordType(endpointID), nil
}

// Execute resolves an operation by name and performs it. An unknown name
// fails before any network traffic.
func (r *Registry) Execute(ctx context.Context, endpointID, name string, args map[string]any) (any, error) {
	// The session pointer is copied under the lock so a concurrent Refresh
	// swapping it in cannot race with this read.
	r.mu.RLock()
	state, ok := r.endpoints[endpointID]
	var session *Session
	if ok {
		session = state.session
	}
	r.mu.RUnlock()
	if !ok {
		return nil, &errors.NotFoundError{Resource: "endpoint", ID: endpointID}
	}

	op, found := r.catalog.FindByName(endpointID, name)
	if !found {
		return nil, &errors.NotFoundError{Resource: "operation", ID: name}
	}

	logger := logpkg.WithOperation(r.logger, endpointID, name)
	start := time.Now()
	result, err := r.executor.Execute(ctx, session, op, args)
	logger.Debug("operation executed",
		slog.Int64(logpkg.DurationKey, time.Since(start).Milliseconds()),
		slog.Bool("success", err == nil),
	)
	return result, err
}

// introspect performs one full discovery pass: all record types, then the
// fields of each, sequentially. It returns the complete synthesized set or
// an error; nothing partial is ever produced.
func (r *Registry) introspect(ctx context.Context, session *Session) ([]Operation, int, error) {
	client := NewMetadataClient(session)
	logger := logpkg.WithEndpoint(r.logger, session.ID)

	recordTypes, err := client.ListRecordTypes(ctx)
	if err != nil {
		return nil, 0, err
	}

	var ops []Operation
	introspected := 0
	for _, rt := range recordTypes {
		// Entities without a collection name have no Web API route.
		if rt.LogicalName == "" || rt.CollectionName == "" {
			continue
		}
		fields, err := client.ListFields(ctx, rt.LogicalName)
		if err != nil {
			return nil, 0, err
		}
		synthesized := Synthesize(rt, fields)
		logger.Debug("record type introspected",
			slog.String(logpkg.RecordTypeKey, rt.LogicalName),
			slog.Int("fields", len(fields)),
			slog.Int("operations", len(synthesized)),
		)
		ops = append(ops, synthesized...)
		introspected++
	}
	return ops, introspected, nil
}

// statusLocked builds a status snapshot; r.mu must be held by the caller.
func (r *Registry) statusLocked(endpointID string, state *endpointState) EndpointStatus {
	return EndpointStatus{
		ID:           endpointID,
		BaseURL:      state.session.BaseURL,
		RegisteredAt: state.session.CreatedAt,
		RefreshedAt:  state.refreshedAt,
		RecordTypes:  state.recordTypes,
		Operations:   r.catalog.Size(endpointID),
	}
}
