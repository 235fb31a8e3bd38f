package memapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nicolagi/todoes"
	"github.com/nicolagi/todoes/internal/memapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *memapi.Store {
	return memapi.NewStore(
		&todoes.Todo{ID: 1, Name: "buy milk"},
		&todoes.Todo{ID: 2, Name: "buy eggs"},
		&todoes.Todo{ID: 5, Name: "Call Mom"},
	)
}

func TestStoreFind(t *testing.T) {
	s := seeded()
	id := int64(2)
	testCases := []struct {
		filter   memapi.Filter
		expected []int64
	}{
		{filter: memapi.Filter{}, expected: []int64{1, 2, 5}},
		{filter: memapi.Filter{ID: &id}, expected: []int64{2}},
		{filter: memapi.Filter{Name: "BUY"}, expected: []int64{1, 2}},
		{filter: memapi.Filter{Name: "mom"}, expected: []int64{5}},
		{filter: memapi.Filter{ID: &id, Name: "milk"}, expected: []int64{}},
	}
	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			ids := []int64{}
			for _, todo := range s.Find(tc.filter) {
				ids = append(ids, todo.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestStoreCopies(t *testing.T) {
	seed := &todoes.Todo{ID: 1, Name: "a", Extra: map[string]json.RawMessage{"done": json.RawMessage("false")}}
	s := memapi.NewStore(seed)
	seed.Name = "changed"
	seed.Extra["done"][0] = 'X'
	got, err := s.Get(1)
	require.Nil(t, err)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, json.RawMessage("false"), got.Extra["done"])
}

func TestStoreMutations(t *testing.T) {
	s := seeded()

	added, err := s.Add(&todoes.Todo{Name: "new"})
	require.Nil(t, err)
	assert.Equal(t, int64(6), added.ID)

	_, err = s.Add(&todoes.Todo{ID: 2, Name: "dup"})
	assert.True(t, errors.Is(err, memapi.ErrConflict))

	assert.True(t, errors.Is(s.Update(&todoes.Todo{Name: "no id"}), memapi.ErrNoID))
	assert.True(t, errors.Is(s.Update(&todoes.Todo{ID: 99, Name: "x"}), memapi.ErrNotFound))
	require.Nil(t, s.Update(&todoes.Todo{ID: 2, Name: "buy a dozen eggs"}))
	all := s.Find(memapi.Filter{})
	assert.Equal(t, "buy a dozen eggs", all[1].Name, "position kept")

	deleted, err := s.Delete(1)
	require.Nil(t, err)
	assert.Equal(t, "buy milk", deleted.Name)
	_, err = s.Delete(1)
	assert.True(t, errors.Is(err, memapi.ErrNotFound))
	_, err = s.Get(1)
	assert.True(t, errors.Is(err, memapi.ErrNotFound))
}

func serve(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	r := memapi.NewRouter("/api", seeded())
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	testCases := []struct {
		method string
		target string
		body   string
		code   int
		json   string // Expected body, if not empty.
	}{
		{method: http.MethodGet, target: "/api/todoes", code: 200,
			json: `[{"id":1,"name":"buy milk"},{"id":2,"name":"buy eggs"},{"id":5,"name":"Call Mom"}]`},
		{method: http.MethodGet, target: "/api/todoes/?id=2", code: 200, json: `[{"id":2,"name":"buy eggs"}]`},
		{method: http.MethodGet, target: "/api/todoes/?id=42", code: 200, json: `[]`},
		{method: http.MethodGet, target: "/api/todoes/?id=x", code: 400},
		{method: http.MethodGet, target: "/api/todoes/?name=eggs", code: 200, json: `[{"id":2,"name":"buy eggs"}]`},
		{method: http.MethodGet, target: "/api/todoes/5", code: 200, json: `{"id":5,"name":"Call Mom"}`},
		{method: http.MethodGet, target: "/api/todoes/42", code: 404},
		{method: http.MethodGet, target: "/api/todoes/x", code: 400},
		{method: http.MethodPost, target: "/api/todoes", body: `{"name":"new","done":false}`, code: 201,
			json: `{"id":6,"name":"new","done":false}`},
		{method: http.MethodPost, target: "/api/todoes", body: `{"id":1,"name":"dup"}`, code: 409},
		{method: http.MethodPost, target: "/api/todoes", body: `nope`, code: 400},
		{method: http.MethodPut, target: "/api/todoes", body: `{"id":1,"name":"buy oat milk"}`, code: 204},
		{method: http.MethodPut, target: "/api/todoes", body: `{"id":42,"name":"x"}`, code: 404},
		{method: http.MethodPut, target: "/api/todoes", body: `{"name":"x"}`, code: 400},
		{method: http.MethodDelete, target: "/api/todoes/2", code: 200, json: `{"id":2,"name":"buy eggs"}`},
		{method: http.MethodDelete, target: "/api/todoes/42", code: 404},
		{method: http.MethodGet, target: "/todoes", code: 404},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			w := serve(t, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			if tc.json != "" {
				assert.JSONEq(t, tc.json, w.Body.String())
			}
		})
	}
}

func TestRouterWithoutPrefix(t *testing.T) {
	r := memapi.NewRouter("", seeded())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todoes/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := memapi.Logging(logrus.NewEntry(logger))(memapi.NewRouter("/api", seeded()))
	req := httptest.NewRequest(http.MethodPost, "/api/todoes", bytes.NewBufferString(`{"name":"x"}`))
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Request completed", entry.Message)
	assert.Equal(t, http.StatusCreated, entry.Data["status"])
	assert.Equal(t, "/api/todoes", entry.Data["path"])
	assert.Equal(t, "abc", entry.Data["request_id"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := memapi.Metrics(reg)(memapi.NewRouter("/api", seeded()))
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/todoes/1", nil),
		httptest.NewRequest(http.MethodGet, "/api/todoes/7", nil),
		httptest.NewRequest(http.MethodPost, "/api/todoes", bytes.NewBufferString(`{"name":"x"}`)),
		httptest.NewRequest(http.MethodGet, "/nowhere", nil),
	} {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	expected := `
# HELP todoesd_http_requests_total Number of HTTP requests by method, route and status.
# TYPE todoesd_http_requests_total counter
todoesd_http_requests_total{method="GET",route="/api/todoes/{id}",status="200"} 1
todoesd_http_requests_total{method="GET",route="/api/todoes/{id}",status="404"} 1
todoesd_http_requests_total{method="GET",route="unmatched",status="404"} 1
todoesd_http_requests_total{method="POST",route="/api/todoes",status="201"} 1
`
	assert.Nil(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "todoesd_http_requests_total"))
	count, err := testutil.GatherAndCount(reg, "todoesd_http_request_duration_seconds")
	require.Nil(t, err)
	assert.Equal(t, 3, count)
	count, err = testutil.GatherAndCount(reg, "todoesd_http_in_flight_requests")
	require.Nil(t, err)
	assert.Equal(t, 1, count)
}
