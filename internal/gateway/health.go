package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/lslt/portal-services/internal/unifi"
)

// HealthHandler aggregates the per-service health snapshots.
type HealthHandler struct {
	controller unifi.ControllerClient
	printers   PrintService
	email      EmailService
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(controller unifi.ControllerClient, printers PrintService, email EmailService) *HealthHandler {
	return &HealthHandler{controller: controller, printers: printers, email: email}
}

// healthReply keeps the legacy shape: a bare status plus one snapshot
// per service, without the success envelope.
type healthReply struct {
	Status   string         `json:"status"`
	Services map[string]any `json:"services"`
}

// Health reports the gateway and per-service state.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reply := healthReply{
		Status: "healthy",
		Services: map[string]any{
			"printer": h.printers.HealthCheck(ctx),
			"unifi":   h.controller.HealthCheck(ctx),
			"email":   h.email.HealthCheck(ctx),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(reply)
}
