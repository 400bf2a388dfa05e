package intercept

import (
	"fmt"
	"net/http"
	"time"

	"github.com/traceloom/traceloom/pkg/event"
)

// transport decorates an http.RoundTripper with one interception layer.
type transport struct {
	next http.RoundTripper
	cfg  Config
}

// WrapTransport returns an http.RoundTripper forwarding to next that
// reports completed requests per cfg. Pass the result as an
// http.Client's Transport; the client's behavior is otherwise
// unchanged.
//
// Duration is measured from the request being issued to the response
// headers arriving. The response body is not read or buffered: a
// streaming response completes for the caller exactly as it would
// without interception.
//
// A nil next uses http.DefaultTransport.
func WrapTransport(next http.RoundTripper, cfg Config) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{next: next, cfg: cfg}
}

// RoundTrip forwards the request and reports its completion.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, guard := ensureGuard(req.Context())
	req = req.WithContext(ctx)

	call := &event.Call{
		Method: req.Method,
		Target: req.URL.String(),
		Start:  time.Now(),
	}

	resp, err := t.next.RoundTrip(req)

	call.End = time.Now()
	switch {
	case err != nil:
		call.Err = err
	case resp.StatusCode >= 400:
		// The transport succeeded; the server refused. Report it as a
		// failed call but hand the response back untouched.
		call.Err = fmt.Errorf("%s %s: status %d", req.Method, req.URL, resp.StatusCode)
	}
	report(ctx, guard, call, t.cfg)

	// The caller sees the transport's outcome, not the report's.
	if err != nil {
		return nil, err
	}
	return resp, nil
}
