package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/envelope"
	"webhook-gatekeeper/internal/gatekeeper"
)

// HandleWebhook reads the raw body once, hands it to the dispatcher and
// writes the single JSON reply.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.settings.MaxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = errors.PayloadTooLargeError(tooLarge.Limit)
		} else {
			err = errors.MalformedBodyError(err)
		}
		h.logger.WithContext(r.Context()).Warn("Failed to read request body", logging.Err(err))
		writeReply(w, gatekeeper.ErrorReply(err))
		return
	}

	reply := h.dispatcher.Dispatch(r.Context(), envelope.NewRawDelivery(body, r.Header))
	writeReply(w, reply)
}

// HandleLiveness answers GET / with a plain "ok"
func (h *Handlers) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
