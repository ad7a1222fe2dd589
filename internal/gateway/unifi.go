package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lslt/portal-services/internal/observability"
	"github.com/lslt/portal-services/internal/response"
	"github.com/lslt/portal-services/internal/unifi"
)

// defaultAuthorizationHours applies when an authorize request omits the
// duration.
const defaultAuthorizationHours = 24

// UniFiHandler serves the /unifi endpoints.
type UniFiHandler struct {
	controller unifi.ControllerClient
	logger     observability.Logger
}

// NewUniFiHandler creates the controller handler group.
func NewUniFiHandler(controller unifi.ControllerClient, logger observability.Logger) *UniFiHandler {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &UniFiHandler{controller: controller, logger: logger}
}

// Block denies network access for a device.
//
// POST /unifi/block-device
func (h *UniFiHandler) Block(w http.ResponseWriter, r *http.Request) {
	var req BlockDeviceRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "device blocking", err)

		return
	}

	result, err := h.controller.BlockDevice(r.Context(), req.MACAddress, req.Reason)
	if err != nil {
		writeError(w, h.logger, "device blocking", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Device blocked successfully",
		"result":  result,
	})
}

// Unblock removes every block rule for a device.
//
// POST /unifi/unblock-device
func (h *UniFiHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	var req UnblockDeviceRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "device unblocking", err)

		return
	}

	result, err := h.controller.UnblockDevice(r.Context(), req.MACAddress)
	if err != nil {
		writeError(w, h.logger, "device unblocking", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Device unblocked successfully",
		"result":  result,
	})
}

// Authorize grants a guest device timed internet access.
//
// POST /unifi/authorize-device
func (h *UniFiHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeDeviceRequest
	if err := response.Decode(r, &req); err != nil {
		writeError(w, h.logger, "device authorization", err)

		return
	}

	hours := req.DurationHours
	if hours <= 0 {
		hours = defaultAuthorizationHours
	}

	result, err := h.controller.AuthorizeDevice(r.Context(), req.MACAddress, hours)
	if err != nil {
		writeError(w, h.logger, "device authorization", err)

		return
	}

	response.OK(w, response.Fields{
		"message": "Device authorized successfully",
		"result":  result,
	})
}

// DeviceStatus looks one device up in the active-clients list.
//
// GET /unifi/device-status/{mac_address}
func (h *UniFiHandler) DeviceStatus(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac_address")

	status, err := h.controller.GetDeviceStatus(r.Context(), mac)
	if err != nil {
		writeError(w, h.logger, "device status lookup", err)

		return
	}

	response.OK(w, response.Fields{
		"device_status": status,
	})
}

// BlockedDevices lists the blocked-device inventory.
//
// GET /unifi/blocked-devices
func (h *UniFiHandler) BlockedDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.controller.ListBlockedDevices(r.Context())
	if err != nil {
		writeError(w, h.logger, "blocked device listing", err)

		return
	}

	response.OK(w, response.Fields{
		"blocked_devices": devices,
	})
}

// NetworkStats counts active, guest, and authenticated clients.
//
// GET /unifi/network-stats
func (h *UniFiHandler) NetworkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.controller.GetNetworkStats(r.Context())
	if err != nil {
		writeError(w, h.logger, "network stats lookup", err)

		return
	}

	response.OK(w, response.Fields{
		"network_stats": stats,
	})
}
