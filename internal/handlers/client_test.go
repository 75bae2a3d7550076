package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/traiteur-admin/internal/clients"
	"github.com/diewo77/traiteur-admin/internal/logger"
)

type stubSource struct {
	records []clients.QuoteRecord
	err     error
}

func (s *stubSource) ActiveQuotes(context.Context) ([]clients.QuoteRecord, error) {
	return s.records, s.err
}
func (s *stubSource) FinishedQuotes(context.Context) ([]clients.QuoteRecord, error) { return nil, nil }
func (s *stubSource) DeletedQuotes(context.Context) ([]clients.QuoteRecord, error)  { return nil, nil }

type stubCache struct {
	body []byte
	sets int
	err  error
}

func (c *stubCache) Get(context.Context) ([]byte, bool, error) {
	return c.body, c.body != nil, c.err
}
func (c *stubCache) Set(_ context.Context, b []byte) error { c.body = b; c.sets++; return nil }
func (c *stubCache) Invalidate(context.Context) error      { c.body = nil; return nil }

func newClientHandler(src clients.QuoteSource, c *stubCache) *ClientHandler {
	return NewClientHandler(clients.NewAggregator(src, logger.Nop()), c, logger.Nop())
}

func serveClients(h *ClientHandler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /clients", h.List)
	mux.HandleFunc("GET /clients/{phone}", h.Get)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestClientListSortedAndCached(t *testing.T) {
	src := &stubSource{records: []clients.QuoteRecord{
		{FirstName: "Zoé", LastName: "Martin", PhoneNumber: "0600000001"},
		{FirstName: "alice", LastName: "Bernard", PhoneNumber: "0600000002"},
	}}
	c := &stubCache{}
	h := newClientHandler(src, c)

	w := serveClients(h, "/clients")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var list []clients.Client
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "alice Bernard" {
		t.Fatalf("expected case-insensitive name order, got %+v", list)
	}
	if c.sets != 1 {
		t.Fatalf("expected list to be cached once, got %d", c.sets)
	}

	// served from cache even if the source now fails
	src.err = errors.New("db down")
	w = serveClients(h, "/clients")
	if w.Body.String() != string(c.body) {
		t.Fatalf("expected cached body, got %s", w.Body.String())
	}
}

func TestClientListFailureIsEmptyAndNotCached(t *testing.T) {
	c := &stubCache{}
	h := newClientHandler(&stubSource{err: errors.New("db down")}, c)
	w := serveClients(h, "/clients")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("expected 200 [] got %d %s", w.Code, w.Body.String())
	}
	if c.sets != 0 {
		t.Fatal("empty list must not be cached")
	}
}

func TestClientListCacheErrorFallsBack(t *testing.T) {
	c := &stubCache{err: errors.New("redis down")}
	h := newClientHandler(&stubSource{records: []clients.QuoteRecord{{FirstName: "A", PhoneNumber: "0600000001"}}}, c)
	w := serveClients(h, "/clients")
	var list []clients.Client
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected fresh list on cache error, got %s", w.Body.String())
	}
}

func TestClientGetStatuses(t *testing.T) {
	ok := newClientHandler(&stubSource{records: []clients.QuoteRecord{{FirstName: "A", PhoneNumber: "+33611223344"}}}, &stubCache{})
	if w := serveClients(ok, "/clients/%2B33611223344"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if w := serveClients(ok, "/clients/0000000000"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	failing := newClientHandler(&stubSource{err: errors.New("db down")}, &stubCache{})
	w := serveClients(failing, "/clients/0611223344")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "upstream_fetch_failed" {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestListParams(t *testing.T) {
	cases := []struct {
		query         string
		limit, offset int
		q             string
	}{
		{"", 50, 0, ""},
		{"limit=10&page=3", 10, 20, ""},
		{"limit=500", 50, 0, ""},
		{"page=0&q=%20dupont%20", 50, 0, "dupont"},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/quotes?"+c.query, nil)
		p := listParams(r)
		if p.Limit != c.limit || p.Offset != c.offset || p.Query != c.q {
			t.Errorf("%q: got %+v", c.query, p)
		}
	}
}
