package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleSearch(t *testing.T) {
	t.Parallel()

	t.Run("clamps num and drops items without link", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("num") != "10" {
				t.Errorf("num = %q, want 10", q.Get("num"))
			}
			if q.Get("key") != "k" || q.Get("cx") != "cx" || q.Get("q") != "john" {
				t.Errorf("unexpected query %v", q)
			}
			_, _ = w.Write([]byte(`{"items":[
				{"title":"John on GitHub","link":"https://github.com/john","snippet":"code"},
				{"title":"no link"}
			]}`))
		}))
		defer srv.Close()

		res := NewGoogleSearch(srv.URL, "k", "cx").Search(context.Background(), "john", 50)
		if !res.OK() {
			t.Fatalf("unexpected failure: %s", res.Reason)
		}
		if len(res.Items) != 1 || res.Items[0].Link != "https://github.com/john" {
			t.Errorf("unexpected items %+v", res.Items)
		}
	})

	t.Run("num below one becomes one", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("num") != "1" {
				t.Errorf("num = %q, want 1", r.URL.Query().Get("num"))
			}
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		res := NewGoogleSearch(srv.URL, "k", "cx").Search(context.Background(), "john", 0)
		if !res.OK() || len(res.Items) != 0 {
			t.Errorf("expected empty success, got %+v", res)
		}
	})

	t.Run("quota exceeded is a failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		if res := NewGoogleSearch(srv.URL, "k", "cx").Search(context.Background(), "john", 5); res.OK() {
			t.Error("expected failure")
		}
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		if res := NewGoogleSearch("", "k", "").Search(context.Background(), "john", 5); res.OK() {
			t.Error("expected failure without an engine id")
		}
	})
}
