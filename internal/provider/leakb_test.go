package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nao1215/idguard/internal/model"
)

const jobID = "5c5c1d0b-1c1c-4d4d-8e8e-0123456789ab"

func TestLeakIndexSubmitAndPoll(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-key") != "secret" {
			t.Errorf("missing x-key header")
		}
		switch r.URL.Path {
		case "/intelligent/search":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s", r.Method)
			}
			var body struct {
				Term       string `json:"term"`
				MaxResults int    `json:"maxresults"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Term != "john@example.com" || body.MaxResults <= 0 {
				t.Errorf("unexpected body %+v (%v)", body, err)
			}
			_, _ = w.Write([]byte(`{"id":"` + jobID + `","status":0}`))
		case "/intelligent/search/result":
			if r.URL.Query().Get("id") != jobID {
				t.Errorf("id = %q", r.URL.Query().Get("id"))
			}
			if polls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"status":3,"records":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":1,"records":[
				{"systemid":"a1","name":"combo.txt","date":"2020-05-01T10:00:00Z","bucket":"leaks.private"},
				{"systemid":"","name":"ignored"}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	index := NewLeakIndex(srv.URL, "secret")
	id, err := index.Submit(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != jobID {
		t.Errorf("id = %q", id)
	}

	state, found, err := index.Poll(context.Background(), id)
	if err != nil || state != PollPending || len(found) != 0 {
		t.Fatalf("first poll: state=%v found=%v err=%v", state, found, err)
	}

	state, found, err = index.Poll(context.Background(), id)
	if err != nil || state != PollDone {
		t.Fatalf("second poll: state=%v err=%v", state, err)
	}
	want := model.Finding{
		Source:    model.SourceLeakServiceB,
		Title:     "combo.txt",
		Reference: "a1",
		Excerpt:   "leaks.private",
		Date:      "2020-05-01",
	}
	if len(found) != 1 || found[0] != want {
		t.Errorf("found = %+v", found)
	}
}

func TestLeakIndexErrors(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		if _, err := NewLeakIndex("", "").Submit(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("job id that is not a uuid", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"../../etc"}`))
		}))
		defer srv.Close()

		if _, err := NewLeakIndex(srv.URL, "k").Submit(context.Background(), "x"); !errors.Is(err, ErrInvalidJobID) {
			t.Errorf("expected ErrInvalidJobID, got %v", err)
		}
		if _, _, err := NewLeakIndex(srv.URL, "k").Poll(context.Background(), "nope"); !errors.Is(err, ErrInvalidJobID) {
			t.Errorf("expected ErrInvalidJobID, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":9}`))
		}))
		defer srv.Close()

		if _, _, err := NewLeakIndex(srv.URL, "k").Poll(context.Background(), jobID); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("expired job", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		state, _, err := NewLeakIndex(srv.URL, "k").Poll(context.Background(), jobID)
		if state != PollNotFound || !errors.Is(err, ErrJobNotFound) {
			t.Errorf("state=%v err=%v", state, err)
		}
	})
}

type pollStep struct {
	state PollState
	found []model.Finding
	err   error
}

type fakeAsyncSource struct {
	submitErr error
	steps     []pollStep
	polls     int
}

func (f *fakeAsyncSource) Name() string { return LeakIndexName }

func (f *fakeAsyncSource) Submit(context.Context, string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return jobID, nil
}

func (f *fakeAsyncSource) Poll(context.Context, string) (PollState, []model.Finding, error) {
	step := f.steps[min(f.polls, len(f.steps)-1)]
	f.polls++
	return step.state, step.found, step.err
}

func TestAsyncPollerFind(t *testing.T) {
	t.Parallel()

	rec := func(id string) model.Finding {
		return model.Finding{Source: model.SourceLeakServiceB, Title: id, Reference: id}
	}

	tests := []struct {
		name      string
		source    *fakeAsyncSource
		wantOK    bool
		wantItems int
		wantPolls int
	}{
		{
			name: "ready then done accumulates",
			source: &fakeAsyncSource{steps: []pollStep{
				{state: PollReady, found: []model.Finding{rec("a")}},
				{state: PollPending},
				{state: PollDone, found: []model.Finding{rec("a"), rec("b")}},
			}},
			wantOK: true, wantItems: 2, wantPolls: 3,
		},
		{
			name:   "done with nothing is an empty success",
			source: &fakeAsyncSource{steps: []pollStep{{state: PollDone}}},
			wantOK: true, wantItems: 0, wantPolls: 1,
		},
		{
			name:   "always pending exhausts the polls",
			source: &fakeAsyncSource{steps: []pollStep{{state: PollPending}}},
			wantOK: false, wantItems: 0, wantPolls: 3,
		},
		{
			name: "partial results survive exhaustion",
			source: &fakeAsyncSource{steps: []pollStep{
				{state: PollReady, found: []model.Finding{rec("a")}},
				{state: PollPending},
			}},
			wantOK: true, wantItems: 1, wantPolls: 3,
		},
		{
			name:   "lost job stops polling",
			source: &fakeAsyncSource{steps: []pollStep{{state: PollNotFound, err: ErrJobNotFound}}},
			wantOK: false, wantItems: 0, wantPolls: 1,
		},
		{
			name: "failed poll is retried",
			source: &fakeAsyncSource{steps: []pollStep{
				{state: PollPending, err: errors.New("timeout")},
				{state: PollDone, found: []model.Finding{rec("a")}},
			}},
			wantOK: true, wantItems: 1, wantPolls: 2,
		},
		{
			name:   "submit failure",
			source: &fakeAsyncSource{submitErr: ErrNotConfigured},
			wantOK: false, wantItems: 0, wantPolls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewAsyncPoller(tt.source, WithPollAttempts(3), WithPollInterval(0))
			res := p.Find(context.Background(), "john")
			if res.OK() != tt.wantOK {
				t.Errorf("OK() = %v (reason %q), want %v", res.OK(), res.Reason, tt.wantOK)
			}
			if len(res.List()) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(res.List()), tt.wantItems)
			}
			if tt.source.polls != tt.wantPolls {
				t.Errorf("polls = %d, want %d", tt.source.polls, tt.wantPolls)
			}
			if res.Provider != LeakIndexName {
				t.Errorf("Provider = %q", res.Provider)
			}
		})
	}
}
