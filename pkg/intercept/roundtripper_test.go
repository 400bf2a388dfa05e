package intercept

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/traceloom/traceloom/pkg/filter"
	"github.com/traceloom/traceloom/pkg/sink"
)

func TestWrapTransportPreservesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	mem := sink.NewMemorySink(0)
	client := &http.Client{Transport: WrapTransport(nil, allSignals("http", mem, nil))}

	resp, err := client.Get(srv.URL + "/rest/v1/items")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Test") != "yes" {
		t.Errorf("response altered: %d %v", resp.StatusCode, resp.Header)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"ok":true}` {
		t.Errorf("body altered: %q", body)
	}

	spans := mem.Spans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name != "GET" || !strings.HasSuffix(spans[0].Target, "/rest/v1/items") {
		t.Errorf("span = %+v", spans[0])
	}
	if spans[0].Status != "ok" {
		t.Errorf("status = %s", spans[0].Status)
	}
	if len(mem.Errors()) != 0 {
		t.Error("no error event expected for 200")
	}
}

func TestWrapTransportReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	mem := sink.NewMemorySink(0)
	client := &http.Client{Transport: WrapTransport(nil, allSignals("http", mem, nil))}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	resp.Body.Close()

	// Caller still receives the 500 response untouched
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if got := len(mem.Errors()); got != 1 {
		t.Fatalf("error events = %d, want 1", got)
	}
	if !strings.Contains(mem.Errors()[0].Message, "status 500") {
		t.Errorf("error message = %q", mem.Errors()[0].Message)
	}
	spans := mem.Spans()
	if len(spans) != 1 || spans[0].Status != "error" {
		t.Errorf("spans = %+v", spans)
	}
}

func TestWrapTransportFilterByURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	mem := sink.NewMemorySink(0)
	cfg := allSignals("rest-only", mem, filter.URLPrefix(srv.URL+"/rest/"))
	client := &http.Client{Transport: WrapTransport(nil, cfg)}

	for _, path := range []string{"/rest/v1/items", "/storage/v1/objects"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	spans := mem.Spans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1 (storage call filtered out)", len(spans))
	}
	if !strings.HasSuffix(spans[0].Target, "/rest/v1/items") {
		t.Errorf("wrong call reported: %s", spans[0].Target)
	}
}

func TestWrapTransportStackedLayersReportOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	memA := sink.NewMemorySink(0)
	memB := sink.NewMemorySink(0)
	rt := WrapTransport(nil, allSignals("a", memA, nil))
	rt = WrapTransport(rt, allSignals("b", memB, nil))
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if len(memA.Spans())+len(memB.Spans()) != 1 {
		t.Errorf("call reported %d times across layers, want exactly 1",
			len(memA.Spans())+len(memB.Spans()))
	}
}

func TestWrapTransportNetworkError(t *testing.T) {
	mem := sink.NewMemorySink(0)
	client := &http.Client{Transport: WrapTransport(nil, allSignals("http", mem, nil))}

	// Closed server: transport-level failure
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := client.Get(url)
	if err == nil {
		t.Fatal("expected a network error")
	}
	if got := len(mem.Errors()); got != 1 {
		t.Errorf("error events = %d, want 1", got)
	}
}
