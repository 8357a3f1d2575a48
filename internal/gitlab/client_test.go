package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/iocache"
	"github.com/huangsam/glexport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchGroupsSendsTokenAndDecodes(t *testing.T) {
	var gotToken, gotPath string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("X-Total-Pages", "4")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Platform","path":"platform","full_path":"org/platform"}]`))
	})

	client := NewClient(srv.URL+"/", "secret", 5*time.Second)
	q := BuildQuery(GroupsEndpoint, NoFilters(), 1, QueryInputs{})
	page, err := client.FetchGroups(context.Background(), q.URL)
	require.NoError(t, err)

	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, q.URL, gotPath)
	assert.Equal(t, []schema.Group{{ID: 1, Name: "Platform", Path: "platform"}}, page.Items)
	assert.Equal(t, 4, page.TotalPages)
	assert.True(t, page.HasTotal)
}

func TestFetchProjectsDecodes(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Pages", "1")
		_, _ = w.Write([]byte(`[{"id":9,"name":"api","name_with_namespace":"Platform / api","archived":false}]`))
	})

	page, err := NewClient(srv.URL, "t", time.Second).FetchProjects(context.Background(), "/projects?page=1")
	require.NoError(t, err)
	assert.Equal(t, []schema.Project{{ID: 9, Name: "api", NameWithNamespace: "Platform / api"}}, page.Items)
}

func TestFetchCommitsMapsTitleAndDay(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Pages", "1")
		_, _ = w.Write([]byte(`[
			{"id":"abc","title":"fix bug","message":"fix bug\n\nlong body","committer_email":"a@x","committed_date":"2024-01-02T23:30:00+02:00"},
			{"id":"def","title":"late night","committer_email":"b@x","committed_date":"2024-01-02T23:30:00-05:00"}
		]`))
	})

	page, err := NewClient(srv.URL, "t", time.Second).FetchCommits(context.Background(), CommitsEndpoint(1))
	require.NoError(t, err)
	assert.Equal(t, []schema.Commit{
		{Message: "fix bug", CommitterEmail: "a@x", CommittedDate: "2024-01-02"},
		{Message: "late night", CommitterEmail: "b@x", CommittedDate: "2024-01-02"},
	}, page.Items)
}

func TestFetchMissingTotalHeader(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	page, err := NewClient(srv.URL, "t", time.Second).FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	assert.False(t, page.HasTotal)
	assert.Empty(t, page.Items)
}

func TestFetchNon2xxIsFetchError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"401 Unauthorized"}`, http.StatusUnauthorized)
	})

	_, err := NewClient(srv.URL, "bad", time.Second).FetchGroups(context.Background(), GroupsEndpoint)
	var fetchErr *contract.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.Status)
	assert.Equal(t, GroupsEndpoint, fetchErr.URL)
	assert.Contains(t, fetchErr.Error(), "401 Unauthorized")
}

func TestFetchDecodeFailureIsFetchError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := NewClient(srv.URL, "t", time.Second).FetchProjects(context.Background(), ProjectsEndpoint)
	var fetchErr *contract.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusOK, fetchErr.Status)
}

func TestFetchNetworkFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "t", time.Second).FetchGroups(context.Background(), GroupsEndpoint)
	var fetchErr *contract.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
	assert.NotNil(t, errors.Unwrap(fetchErr))
}

func TestFetchUsesFreshCacheEntry(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	cached, err := json.Marshal(schema.Page[schema.Group]{
		Items:      []schema.Group{{ID: 5, Name: "Cached", Path: "cached"}},
		TotalPages: 1,
		HasTotal:   true,
	})
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(cached, currentCacheVersion, time.Now().Unix(), nil)

	client := NewClient(srv.URL, "t", time.Second, WithCache(store, time.Hour))
	page, err := client.FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "cached", page.Items[0].Path)
	assert.Zero(t, calls.Load())
	store.AssertExpectations(t)
}

func TestFetchStoresPageOnMiss(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Pages", "1")
		_, _ = w.Write([]byte(`[{"id":1,"name":"g","path":"g"}]`))
	})

	store := &iocache.MockCacheStore{}
	// stale entry is ignored
	store.On("Get", mock.Anything).Return([]byte(`{}`), currentCacheVersion, time.Now().Add(-2*time.Hour).Unix(), nil)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	client := NewClient(srv.URL, "t", time.Second, WithCache(store, time.Hour))
	page, err := client.FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	store.AssertCalled(t, "Set", client.cacheKey(GroupsEndpoint), mock.Anything, currentCacheVersion, mock.Anything)
}

func TestFetchCacheIsScopedToToken(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Total-Pages", "1")
		if r.Header.Get("PRIVATE-TOKEN") == "alice" {
			_, _ = w.Write([]byte(`[{"id":1,"name":"secret","path":"alice-private"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":2,"name":"public","path":"bob-visible"}]`))
	})

	store, err := iocache.NewPageStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	alice := NewClient(srv.URL, "alice", time.Second, WithCache(store, time.Hour))
	bob := NewClient(srv.URL, "bob", time.Second, WithCache(store, time.Hour))
	assert.NotEqual(t, alice.cacheKey(GroupsEndpoint), bob.cacheKey(GroupsEndpoint))

	page, err := alice.FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "alice-private", page.Items[0].Path)

	page, err = bob.FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob-visible", page.Items[0].Path)
	assert.Equal(t, int32(2), calls.Load())

	// same token still hits the cache
	page, err = NewClient(srv.URL, "alice", time.Second, WithCache(store, time.Hour)).FetchGroups(context.Background(), GroupsEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "alice-private", page.Items[0].Path)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCalendarDay(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2024-01-02T10:00:00Z", "2024-01-02", false},
		{"2024-01-02T00:30:00+09:00", "2024-01-02", false},
		{"2024-01-02T23:59:59.000-08:00", "2024-01-02", false},
		{"2024-01-02", "2024-01-02", false},
		{"yesterday", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := CalendarDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
