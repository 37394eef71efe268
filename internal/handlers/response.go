package handlers

import (
	"encoding/json"
	"net/http"

	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/gatekeeper"
)

func writeReply(w http.ResponseWriter, reply gatekeeper.Reply) {
	writeJSON(w, reply.Status, reply.Body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to write response", err)
	}
}
