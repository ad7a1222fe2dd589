package gateway_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lslt/portal-services/internal/unifi"
)

func TestHealthAggregatesServices(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)

	code, body := g.doJSON(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	assert.Equal(t, "healthy", field(t, body, "services", "unifi", "status"))
	assert.Equal(t, true, field(t, body, "services", "printer", "initialized"))
	assert.Equal(t, "smtp", field(t, body, "services", "email", "provider"))

	// The health reply predates the success envelope.
	_, hasSuccess := body["success"]
	assert.False(t, hasSuccess)
}

func TestHealthReportsDegradedBackend(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	g.controller.health = &unifi.HealthStatus{
		Status: "unavailable",
		Error:  "unifi controller is not configured",
	}

	code, body := g.doJSON(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "unavailable", field(t, body, "services", "unifi", "status"))
	assert.Equal(t, "unifi controller is not configured", field(t, body, "services", "unifi", "error"))
}
