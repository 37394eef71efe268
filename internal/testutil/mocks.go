package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ReceivedRequest is one call seen by a Downstream
type ReceivedRequest struct {
	Body        []byte
	ContentType string
}

// Downstream is a fake forwarding destination that records every request
type Downstream struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	received []ReceivedRequest
}

// NewDownstream starts a destination answering with status. It is closed
// when the test ends.
func NewDownstream(t testing.TB, status int) *Downstream {
	t.Helper()
	d := &Downstream{status: status}
	d.Server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.Server.Close)
	return d
}

func (d *Downstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	d.mu.Lock()
	d.received = append(d.received, ReceivedRequest{
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
	})
	status := d.status
	d.mu.Unlock()

	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"downstream":"body is never relayed"}`))
}

// SetStatus changes the status returned to subsequent requests
func (d *Downstream) SetStatus(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// Received returns a copy of the recorded requests
func (d *Downstream) Received() []ReceivedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ReceivedRequest, len(d.received))
	copy(out, d.received)
	return out
}

// Hits returns the number of recorded requests
func (d *Downstream) Hits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.received)
}
