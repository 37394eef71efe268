package app

import (
	"net/http"
	"time"

	commonhttp "webhook-gatekeeper/internal/common/http"
)

// newForwardClient builds the outbound client. Redirects are followed, since
// Apps Script deployments answer with a redirect to the script host.
func newForwardClient(timeout time.Duration) *http.Client {
	return commonhttp.NewHTTPClient(
		commonhttp.WithTimeout(timeout),
		commonhttp.WithMaxIdleConnsPerHost(16),
	)
}
