package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/event"
)

// fakeStore serves canned events.
type fakeStore struct {
	errs  []event.ErrorEvent
	spans []event.Span
}

func (f *fakeStore) RecentErrors(_ context.Context, limit int) ([]event.ErrorEvent, error) {
	if limit < len(f.errs) {
		return f.errs[:limit], nil
	}
	return f.errs, nil
}

func (f *fakeStore) RecentSpans(_ context.Context, limit int) ([]event.Span, error) {
	if limit < len(f.spans) {
		return f.spans[:limit], nil
	}
	return f.spans, nil
}

func (f *fakeStore) TraceSpans(_ context.Context, traceID string) ([]event.Span, error) {
	var out []event.Span
	for _, s := range f.spans {
		if s.TraceID == traceID {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeTraceNotFound, "no spans for trace %q", traceID)
	}
	return out, nil
}

func newTestServer(store EventStore) *httptest.Server {
	return httptest.NewServer(New(store, nil))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeStore{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestErrorsEndpoint(t *testing.T) {
	store := &fakeStore{errs: []event.ErrorEvent{
		{ID: "e1", Message: "boom", Time: time.Now()},
		{ID: "e2", Message: "bang", Time: time.Now()},
	}}
	srv := newTestServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/errors")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []event.ErrorEvent
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "e1" {
		t.Errorf("events = %v", got)
	}
}

func TestErrorsEndpointEmptyIsArray(t *testing.T) {
	srv := newTestServer(&fakeStore{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/errors")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []event.ErrorEvent
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("empty result should decode as JSON array: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got = %v, want empty array", got)
	}
}

func TestSpansLimit(t *testing.T) {
	store := &fakeStore{}
	for i := range 10 {
		store.spans = append(store.spans, event.Span{ID: string(rune('a' + i))})
	}
	srv := newTestServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/spans?limit=3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []event.Span
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("spans = %d, want 3", len(got))
	}
}

func TestTraceEndpoint(t *testing.T) {
	store := &fakeStore{spans: []event.Span{
		{ID: "s1", TraceID: "t1"},
		{ID: "s2", TraceID: "t1"},
		{ID: "s3", TraceID: "t2"},
	}}
	srv := newTestServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/traces/t1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []event.Span
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("spans = %d, want 2", len(got))
	}
}

func TestTraceNotFound(t *testing.T) {
	srv := newTestServer(&fakeStore{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/traces/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "TRACE_NOT_FOUND" {
		t.Errorf("code = %q", body.Code)
	}
}
