package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, fs *fakeStore) *Manager {
	t.Helper()
	return NewManager(fs, WithClock(clock.Fake(fixedNow)), WithMetrics(observability.NewMetrics()))
}

func loadedManager(t *testing.T, fs *fakeStore) *Manager {
	t.Helper()
	m := newTestManager(t, fs)
	require.NoError(t, m.Load(context.Background(), owner))
	return m
}

func ids(apps []types.Application) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID)
	}
	return out
}

func TestLoad_OrdersNewestFirstAndScopesToOwner(t *testing.T) {
	fs := newFakeStore()
	fs.seed(
		row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"),
		row("a2", "someone-else", "Initech", "PM", "offer", "2025-01-05"),
		row("a3", owner, "Globex", "SRE", "interview", "2025-01-09"),
		row("a4", owner, "Hooli", "Data", "rejected", "2024-12-20"),
	)

	m := loadedManager(t, fs)

	assert.Equal(t, []string{"a3", "a1", "a4"}, ids(m.List()))
	assert.False(t, m.IsLoading())
	assert.True(t, m.Loaded())
}

func TestLoad_FailureLeavesListUnchanged(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
	m := loadedManager(t, fs)

	fs.queryErr = errUnavailable
	err := m.Load(context.Background(), owner)

	var loadErr *LoadFailedError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, []string{"a1"}, ids(m.List()))
	assert.False(t, m.IsLoading())
}

func TestLoad_FirstFailureKeepsEmptyList(t *testing.T) {
	fs := newFakeStore()
	fs.queryErr = errUnavailable
	m := newTestManager(t, fs)

	err := m.Load(context.Background(), owner)
	require.Error(t, err)
	assert.Empty(t, m.List())
	assert.False(t, m.Loaded())
}

func TestLoad_RequiresIdentity(t *testing.T) {
	fs := newFakeStore()
	m := newTestManager(t, fs)

	err := m.Load(context.Background(), "")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, 0, fs.count("query"))
}

func TestLoad_SkipsMalformedRecords(t *testing.T) {
	fs := newFakeStore()
	fs.seed(
		row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"),
		row("bad-status", owner, "Acme", "SWE", "ghosted", "2025-01-03"),
		row("bad-date", owner, "Acme", "SWE", "offer", "yesterday"),
	)

	m := loadedManager(t, fs)

	assert.Equal(t, []string{"a1"}, ids(m.List()))
	assert.Equal(t, 2, m.Skipped())
}

func TestLoad_IsLoadingWhileInFlight(t *testing.T) {
	fs := newFakeStore()
	fs.queryGate = make(chan struct{})
	fs.queryStarted = make(chan struct{}, 1)
	m := newTestManager(t, fs)

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background(), owner) }()

	<-fs.queryStarted
	assert.True(t, m.IsLoading())

	close(fs.queryGate)
	require.NoError(t, <-done)
	assert.False(t, m.IsLoading())
}

func TestAdd_PrependsStoredRecord(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "interview", "2025-01-02"))
	m := loadedManager(t, fs)

	fs.nextID = "42"
	app, err := m.Add(context.Background(), owner, types.Draft{Company: "Google", Position: "SWE Intern"})
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "42", list[0].ID)
	assert.Equal(t, types.StatusApplied, list[0].Status)
	assert.Equal(t, app, list[0])
	assert.Equal(t, "2025-06-01", list[0].DateApplied.Format(DateLayout))
	assert.Equal(t, owner, list[0].OwnerID)
}

func TestAdd_UsesDraftStatusAndDate(t *testing.T) {
	fs := newFakeStore()
	m := loadedManager(t, fs)

	date := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	app, err := m.Add(context.Background(), owner, types.Draft{
		Company:     "  Acme ",
		Position:    "Backend",
		Status:      "Interview",
		DateApplied: &date,
		Location:    "Remote",
		Notes:       " ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, types.StatusInterview, app.Status)
	assert.Equal(t, date, app.DateApplied)
	assert.Equal(t, "Remote", app.Location)
	assert.Empty(t, app.Notes)
	assert.NotEmpty(t, app.ID)
}

func TestAdd_ValidationMakesNoStoreCall(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		draft     types.Draft
		wantField string
	}{
		{name: "empty company", owner: owner, draft: types.Draft{Company: "", Position: "X"}, wantField: "company"},
		{name: "blank position", owner: owner, draft: types.Draft{Company: "Acme", Position: "  "}, wantField: "position"},
		{name: "bad status", owner: owner, draft: types.Draft{Company: "Acme", Position: "X", Status: "ghosted"}, wantField: "status"},
		{name: "no identity", owner: "", draft: types.Draft{Company: "Acme", Position: "X"}, wantField: "owner_id"},
		{name: "other identity", owner: "intruder", draft: types.Draft{Company: "Acme", Position: "X"}, wantField: "owner_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
			m := loadedManager(t, fs)

			_, err := m.Add(context.Background(), tt.owner, tt.draft)

			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.wantField, valErr.Field)
			assert.Equal(t, 0, fs.count("insert"))
			assert.Equal(t, []string{"a1"}, ids(m.List()))
		})
	}
}

func TestAdd_StoreFailureLeavesListUnchanged(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
	m := loadedManager(t, fs)

	fs.insertErr = errUnavailable
	_, err := m.Add(context.Background(), owner, types.Draft{Company: "Google", Position: "SWE"})

	var addErr *AddFailedError
	require.True(t, errors.As(err, &addErr))
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, []string{"a1"}, ids(m.List()))
}

func TestAdd_BeforeLoadAdoptsOwner(t *testing.T) {
	fs := newFakeStore()
	m := newTestManager(t, fs)

	_, err := m.Add(context.Background(), owner, types.Draft{Company: "Acme", Position: "SWE"})
	require.NoError(t, err)
	require.Len(t, m.List(), 1)
	assert.Equal(t, owner, m.List()[0].OwnerID)

	_, err = m.Add(context.Background(), "user-2", types.Draft{Company: "Acme", Position: "SWE"})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "owner_id", valErr.Field)
}

func TestAdd_OverlappingLoadKeepsIDsUnique(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
	m := loadedManager(t, fs)

	fs.insertGate = make(chan struct{})
	fs.insertCommitted = make(chan struct{}, 1)

	type result struct {
		app types.Application
		err error
	}
	done := make(chan result, 1)
	go func() {
		app, err := m.Add(context.Background(), owner, types.Draft{Company: "Globex", Position: "SRE"})
		done <- result{app, err}
	}()

	<-fs.insertCommitted
	require.NoError(t, m.Load(context.Background(), owner))
	require.Len(t, m.List(), 2)

	close(fs.insertGate)
	res := <-done
	require.NoError(t, res.err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, res.app.ID, list[0].ID)
	assert.ElementsMatch(t, []string{"a1", res.app.ID}, ids(list))
	assert.Equal(t, 2, m.Statistics().Total)
}

func TestAdd_RejectsRecordForAnotherIdentity(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
	m := loadedManager(t, fs)

	fs.returnedUserID = "user-2"
	_, err := m.Add(context.Background(), owner, types.Draft{Company: "Globex", Position: "SRE"})

	var addErr *AddFailedError
	require.True(t, errors.As(err, &addErr))
	var malformed *MalformedRecordError
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"a1"}, ids(m.List()))
}

func TestDelete(t *testing.T) {
	seed := func() *fakeStore {
		fs := newFakeStore()
		fs.seed(
			row("a1", owner, "Acme", "SWE", "applied", "2025-01-03"),
			row("a2", owner, "Globex", "SRE", "offer", "2025-01-02"),
			row("a3", owner, "Hooli", "PM", "rejected", "2025-01-01"),
		)
		return fs
	}

	t.Run("present id is removed", func(t *testing.T) {
		fs := seed()
		m := loadedManager(t, fs)

		require.NoError(t, m.Delete(context.Background(), "a2"))
		assert.Equal(t, []string{"a1", "a3"}, ids(m.List()))
		assert.Equal(t, 2, fs.Len("applications"))
	})

	t.Run("nonexistent id leaves list unchanged", func(t *testing.T) {
		fs := seed()
		m := loadedManager(t, fs)

		require.NoError(t, m.Delete(context.Background(), "nonexistent"))
		assert.Len(t, m.List(), 3)
		assert.Equal(t, 1, fs.count("delete"))
	})

	t.Run("store failure leaves list unchanged", func(t *testing.T) {
		fs := seed()
		m := loadedManager(t, fs)
		fs.deleteErr = errUnavailable

		err := m.Delete(context.Background(), "a1")
		var delErr *DeleteFailedError
		require.True(t, errors.As(err, &delErr))
		assert.Equal(t, "a1", delErr.ID)
		assert.Equal(t, []string{"a1", "a2", "a3"}, ids(m.List()))
	})

	t.Run("scoped to owner", func(t *testing.T) {
		fs := seed()
		fs.seed(row("x1", "someone-else", "Initech", "PM", "applied", "2025-01-01"))
		m := loadedManager(t, fs)

		require.NoError(t, m.Delete(context.Background(), "x1"))
		assert.Equal(t, 4, fs.Len("applications"))
	})

	t.Run("empty id", func(t *testing.T) {
		fs := seed()
		m := loadedManager(t, fs)

		var valErr *ValidationError
		require.True(t, errors.As(m.Delete(context.Background(), ""), &valErr))
		assert.Equal(t, 0, fs.count("delete"))
	})
}

func TestStatistics(t *testing.T) {
	fs := newFakeStore()
	fs.seed(
		row("a1", owner, "A", "p", "applied", "2025-01-04"),
		row("a2", owner, "B", "p", "interview", "2025-01-03"),
		row("a3", owner, "C", "p", "offer", "2025-01-02"),
		row("a4", owner, "D", "p", "interview", "2025-01-01"),
	)
	m := loadedManager(t, fs)

	stats := m.Statistics()
	assert.Equal(t, types.Statistics{Total: 4, Applied: 1, Interview: 2, Offer: 1, Rejected: 0}, stats)
	assert.Equal(t, stats.Total, stats.Applied+stats.Interview+stats.Offer+stats.Rejected)

	assert.Equal(t, types.Statistics{}, newTestManager(t, newFakeStore()).Statistics())
}

func TestFilter(t *testing.T) {
	fs := newFakeStore()
	fs.seed(
		row("a1", owner, "Google", "SWE Intern", "applied", "2025-01-04"),
		row("a2", owner, "Acme", "Google Cloud Engineer", "interview", "2025-01-03"),
		row("a3", owner, "Globex", "SRE", "offer", "2025-01-02"),
	)
	m := loadedManager(t, fs)

	assert.Equal(t, m.List(), m.Filter(""))
	assert.Equal(t, []string{"a1", "a2"}, ids(m.Filter("google")))
	assert.Equal(t, m.Filter("google"), m.Filter("GOOGLE"))
	assert.Equal(t, []string{"a3"}, ids(m.Filter("sre")))
	assert.Empty(t, m.Filter("nothing"))
	assert.Len(t, m.List(), 3)
}

func TestList_ReturnsCopy(t *testing.T) {
	fs := newFakeStore()
	fs.seed(row("a1", owner, "Acme", "SWE", "applied", "2025-01-02"))
	m := loadedManager(t, fs)

	list := m.List()
	list[0].Company = "mutated"
	assert.Equal(t, "Acme", m.List()[0].Company)
}

func TestConcurrentAddsAndDeletes(t *testing.T) {
	fs := newFakeStore()
	m := loadedManager(t, fs)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Add(context.Background(), owner, types.Draft{Company: fmt.Sprintf("C%d", i), Position: "P"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	require.Len(t, m.List(), 20)

	for _, app := range m.List()[:10] {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, m.Delete(context.Background(), id))
		}(app.ID)
	}
	wg.Wait()

	assert.Len(t, m.List(), 10)
	assert.Equal(t, 10, m.Statistics().Total)
}
