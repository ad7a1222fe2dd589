package unifi

import (
	"context"
)

// ControllerClient defines the controller operations the gateway depends
// on. The interface exists so handlers can be tested against a mock
// without a running controller.
//
// All methods mirror the corresponding methods on Client.
type ControllerClient interface {
	// BlockDevice denies network access for a device by MAC address.
	BlockDevice(ctx context.Context, mac, reason string) (*BlockResult, error)

	// UnblockDevice removes every block rule matching the device.
	UnblockDevice(ctx context.Context, mac string) (*UnblockResult, error)

	// AuthorizeDevice grants a guest device timed internet access.
	AuthorizeDevice(ctx context.Context, mac string, durationHours int) (*AuthorizeResult, error)

	// GetDeviceStatus looks a device up in the active-clients list.
	GetDeviceStatus(ctx context.Context, mac string) (*DeviceStatus, error)

	// ListBlockedDevices returns the blocked-device inventory.
	ListBlockedDevices(ctx context.Context) ([]BlockedDevice, error)

	// GetNetworkStats counts active, guest, and authenticated clients.
	GetNetworkStats(ctx context.Context) (*NetworkStats, error)

	// GetSiteInfo returns the configured site's metadata.
	GetSiteInfo(ctx context.Context) (*SiteInfo, error)

	// HealthCheck probes the controller, folding failures into the status.
	HealthCheck(ctx context.Context) *HealthStatus

	// Logout invalidates the controller session.
	Logout(ctx context.Context) error
}

// Compile-time check that Client satisfies ControllerClient.
var _ ControllerClient = (*Client)(nil)
