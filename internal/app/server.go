package app

import (
	"time"

	"github.com/gorilla/mux"

	"webhook-gatekeeper/internal/server"
)

// Router builds the HTTP handler with all routes configured
func (app *App) Router() *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, app.Handlers, app.Metrics, app.RateLimiter, app.Config.TrustProxyHeaders)
	return router
}

// writeTimeoutMargin is left after a forward for writing the reply
const writeTimeoutMargin = 10 * time.Second

// NewServer creates the HTTP server for the application
func (app *App) NewServer() *server.Server {
	return server.New(app.Router(), app.Config.Port,
		server.WithWriteTimeout(writeTimeout(app.Config.ForwardTimeout)))
}

// writeTimeout keeps the server from cutting a reply off while a forward is
// still allowed to run. An unbounded forward gets an unbounded write.
func writeTimeout(forward time.Duration) time.Duration {
	if forward <= 0 {
		return 0
	}
	return forward + writeTimeoutMargin
}
