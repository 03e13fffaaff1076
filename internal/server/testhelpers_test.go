package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// flakyStore is an in-memory store whose calls can be made to fail per table.
type flakyStore struct {
	*store.Memory

	mu         sync.Mutex
	failQuery  map[string]error
	failInsert map[string]error
	failDelete map[string]error
	queries    map[string]int
}

func newFlakyStore(clk clock.Clock) *flakyStore {
	return &flakyStore{
		Memory:     store.NewMemoryWithClock(clk),
		failQuery:  map[string]error{},
		failInsert: map[string]error{},
		failDelete: map[string]error{},
		queries:    map[string]int{},
	}
}

func (f *flakyStore) set(m map[string]error, table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(m, table)
		return
	}
	m[table] = err
}

func (f *flakyStore) get(m map[string]error, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return m[table]
}

func (f *flakyStore) queryCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[table]
}

func (f *flakyStore) Query(ctx context.Context, table string, filter store.Filter, order store.Order) ([]json.RawMessage, error) {
	f.mu.Lock()
	f.queries[table]++
	f.mu.Unlock()
	if err := f.get(f.failQuery, table); err != nil {
		return nil, err
	}
	return f.Memory.Query(ctx, table, filter, order)
}

func (f *flakyStore) Insert(ctx context.Context, table string, record any) (json.RawMessage, error) {
	if err := f.get(f.failInsert, table); err != nil {
		return nil, err
	}
	return f.Memory.Insert(ctx, table, record)
}

func (f *flakyStore) Delete(ctx context.Context, table string, filter store.Filter) error {
	if err := f.get(f.failDelete, table); err != nil {
		return err
	}
	return f.Memory.Delete(ctx, table, filter)
}

type testServer struct {
	*Server
	store *flakyStore
	clock *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithRateLimit(t, &ratelimit.Config{Enabled: false})
}

func newTestServerWithRateLimit(t *testing.T, rl *ratelimit.Config) *testServer {
	t.Helper()
	clk := clock.Fake(testEpoch)
	fs := newFlakyStore(clk)

	s, err := New(Config{
		Port:      0,
		Store:     fs,
		Metrics:   observability.NewMetrics(),
		JWT:       &config.JWTConfig{Secret: "test-secret-key-for-jwt-signing", ExpirationHours: 24},
		Password:  &config.PasswordConfig{BcryptCost: 4},
		RateLimit: rl,
		Clock:     clk,
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)

	return &testServer{Server: s, store: fs, clock: clk}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and user.
func (ts *testServer) register(t *testing.T, name, email string) (string, *types.User) {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": name,
		"email":     email,
		"password":  "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
