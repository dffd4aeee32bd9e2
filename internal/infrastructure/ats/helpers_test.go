package ats

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ats-sync/internal/pkg/flags"
)

// fakeATS records every request it receives and answers from a per-path table.
type fakeATS struct {
	t  *testing.T
	mu sync.Mutex

	calls  map[string]int
	bodies map[string][]byte
	routes map[string]http.HandlerFunc
	srv    *httptest.Server
}

func newFakeATS(t *testing.T) *fakeATS {
	t.Helper()
	f := &fakeATS{
		t:      t,
		calls:  map[string]int{},
		bodies: map[string][]byte{},
		routes: map[string]http.HandlerFunc{},
	}
	f.routes["/authenticate"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1"})
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeATS) serve(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.bodies[r.URL.Path] = b
	h, ok := f.routes[r.URL.Path]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeATS) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = h
}

func (f *fakeATS) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeATS) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeATS) body(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func (f *fakeATS) client(t *testing.T, enabled bool) *Client {
	t.Helper()
	tokens := NewCachedTokenProvider(f.srv.URL, Credentials{ClientID: "c", Username: "u", Password: "p"}, 0, nil, nil)
	c, err := NewClient(f.srv.URL, tokens, flags.NewSwitch(enabled, false), Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
