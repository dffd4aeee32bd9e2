package ats

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCachedTokenProvider_ReusesTokenUntilExpiry(t *testing.T) {
	f := newFakeATS(t)
	n := 0
	f.handle("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		n++
		if r.URL.Query().Get("clientid") != "c" || r.URL.Query().Get("username") != "u" || r.URL.Query().Get("password") != "p" {
			t.Errorf("unexpected auth query: %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok"})
	})

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	p := NewCachedTokenProvider(f.srv.URL, Credentials{ClientID: "c", Username: "u", Password: "p"}, time.Hour, nil, nil)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		tok, err := p.Get(context.Background())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if tok != "tok" {
			t.Fatalf("unexpected token %q", tok)
		}
	}
	if n != 1 {
		t.Fatalf("expected 1 auth call, got %d", n)
	}

	now = now.Add(61 * time.Minute)
	if _, err := p.Get(context.Background()); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected refresh after ttl, got %d calls", n)
	}
}

func TestCachedTokenProvider_MissingCredentials(t *testing.T) {
	cases := []Credentials{
		{Username: "u", Password: "p"},
		{ClientID: "c", Password: "p"},
		{ClientID: "c", Username: "u"},
	}
	for _, creds := range cases {
		p := NewCachedTokenProvider("http://127.0.0.1:1", creds, 0, nil, nil)
		_, err := p.Get(context.Background())
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("creds=%+v: expected ErrConfiguration, got %v", creds, err)
		}
	}
}

func TestCachedTokenProvider_ResponseWithoutToken(t *testing.T) {
	f := newFakeATS(t)
	f.handle("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "welcome"})
	})

	p := NewCachedTokenProvider(f.srv.URL, Credentials{ClientID: "c", Username: "u", Password: "p"}, 0, nil, nil)
	_, err := p.Get(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestCachedTokenProvider_RejectedCredentials(t *testing.T) {
	f := newFakeATS(t)
	f.handle("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusForbidden)
	})

	p := NewCachedTokenProvider(f.srv.URL, Credentials{ClientID: "c", Username: "u", Password: "p"}, 0, nil, nil)
	_, err := p.Get(context.Background())
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", re.StatusCode)
	}
}
