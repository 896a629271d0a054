package fetch_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trailgrab/internal/fetch"
)

func newClient(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.New(5*time.Second, nil)
}

func TestGetReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != fetch.UserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	body, err := newClient(t).Get(t.Context(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q", body)
	}
}

func TestGetSendsExtraHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("missing authorization header")
		}
	}))
	defer server.Close()

	_, err := newClient(t).Get(t.Context(), server.URL, map[string]string{"Authorization": "Bearer token"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(t).Get(t.Context(), server.URL, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("server called %d times, want 1", calls.Load())
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	body, err := newClient(t).Get(t.Context(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "recovered" {
		t.Fatalf("body = %q", body)
	}
	if calls.Load() != 2 {
		t.Fatalf("server called %d times, want 2", calls.Load())
	}
}

func TestGetFallsBackOnCertificateFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("insecure ok"))
	}))
	defer server.Close()

	// The verified client rejects the self-signed test certificate, so the
	// body can only arrive through the fallback path.
	body, err := newClient(t).Get(t.Context(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "insecure ok" {
		t.Fatalf("body = %q", body)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"dune","year":2021}`))
	}))
	defer server.Close()

	var out struct {
		Name string `json:"name"`
		Year int    `json:"year"`
	}
	if err := newClient(t).GetJSON(t.Context(), server.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Name != "dune" || out.Year != 2021 {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestGetJSONParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	var out map[string]any
	if err := newClient(t).GetJSON(t.Context(), server.URL, nil, &out); err == nil {
		t.Fatal("expected parse error")
	}
}
