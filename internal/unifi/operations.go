package unifi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lslt/portal-services/internal/observability"
)

// Defaults applied when the caller leaves a field empty.
const (
	// DefaultBlockReason is recorded on block rules created without an
	// explicit reason.
	DefaultBlockReason = "Security policy violation"
	// DefaultAuthorizeHours is the guest authorization window used when no
	// duration is requested.
	DefaultAuthorizeHours = 24
)

// Block rules are created in the LAN_IN ruleset at a fixed index below the
// controller's built-in rules, dropping all protocols from the source MAC.
const (
	blockRuleset    = "LAN_IN"
	blockRuleIndex  = 2000
	blockAction     = "drop"
	blockRulePrefix = "Block_"
)

func (c *Client) firewallRulesPath() string {
	return "/proxy/network/v2/api/site/" + c.site + "/firewallrules"
}

func (c *Client) stationManagerPath() string {
	return "/proxy/network/v2/api/site/" + c.site + "/cmd/stamgr"
}

func (c *Client) activeClientsPath() string {
	return "/proxy/network/v2/api/site/" + c.site + "/clients/active"
}

func (c *Client) healthPath() string {
	return "/proxy/network/v2/api/site/" + c.site + "/health"
}

func (c *Client) sitePath() string {
	return "/proxy/network/v2/api/site/" + c.site
}

// BlockDevice denies network access for a device by creating a drop rule
// keyed to its MAC address. The device lookup and the kick of any live
// connection are best effort: their failures are logged and the block
// still succeeds if the rule is created.
//
// Blocking an already-blocked device creates a second rule; the controller
// does not deduplicate and neither does this client. UnblockDevice removes
// all matching rules.
func (c *Client) BlockDevice(ctx context.Context, mac, reason string) (*BlockResult, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	mac = NormalizeMAC(mac)
	if reason == "" {
		reason = DefaultBlockReason
	}

	status, err := c.GetDeviceStatus(ctx, mac)
	if err != nil || !status.Found {
		c.logger.Warn("device not found in active clients, blocking anyway",
			observability.Field{Key: "mac", Value: mac})
	}

	rule := firewallRuleInput{
		Name:          BlockRuleName(mac),
		Ruleset:       blockRuleset,
		RuleIndex:     blockRuleIndex,
		Action:        blockAction,
		Protocol:      "all",
		SrcMACAddress: mac,
		Enabled:       true,
		Logging:       true,
	}

	var created firewallRule
	if err := c.do(ctx, http.MethodPost, c.firewallRulesPath(), rule, &created); err != nil {
		return nil, errors.Wrapf(err, "failed to block device %s", mac)
	}

	if err := c.disconnect(ctx, mac); err != nil {
		c.logger.Warn("failed to disconnect blocked client",
			observability.Field{Key: "mac", Value: mac},
			observability.Field{Key: "error", Value: err.Error()},
		)
	}

	c.logger.Info("device blocked",
		observability.Field{Key: "mac", Value: mac},
		observability.Field{Key: "reason", Value: reason},
		observability.Field{Key: "rule_id", Value: created.ID},
	)

	return &BlockResult{
		Blocked:        true,
		MACAddress:     mac,
		Reason:         reason,
		FirewallRuleID: created.ID,
		Timestamp:      time.Now(),
	}, nil
}

// UnblockDevice removes every firewall rule blocking the device, matched
// by the deterministic rule name or by the recorded source MAC. Rules that
// fail to delete are logged and skipped; the result lists only the rules
// actually removed.
func (c *Client) UnblockDevice(ctx context.Context, mac string) (*UnblockResult, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	mac = NormalizeMAC(mac)

	var rules firewallRuleList
	if err := c.do(ctx, http.MethodGet, c.firewallRulesPath(), nil, &rules); err != nil {
		return nil, errors.Wrapf(err, "failed to list firewall rules for %s", mac)
	}

	ruleName := BlockRuleName(mac)
	matched := make([]string, 0, 1)
	for _, rule := range rules.Data {
		if rule.Name == ruleName || rule.SrcMACAddress == mac {
			matched = append(matched, rule.ID)
		}
	}

	deleted := []string{}
	for _, ruleID := range matched {
		if err := c.do(ctx, http.MethodDelete, c.firewallRulesPath()+"/"+ruleID, nil, nil); err != nil {
			c.logger.Warn("failed to delete firewall rule",
				observability.Field{Key: "rule_id", Value: ruleID},
				observability.Field{Key: "error", Value: err.Error()},
			)

			continue
		}
		deleted = append(deleted, ruleID)
	}

	c.logger.Info("device unblocked",
		observability.Field{Key: "mac", Value: mac},
		observability.Field{Key: "deleted_rules", Value: len(deleted)},
	)

	return &UnblockResult{
		Unblocked:    true,
		MACAddress:   mac,
		DeletedRules: deleted,
		Timestamp:    time.Now(),
	}, nil
}

// AuthorizeDevice grants a guest device internet access for the given
// number of hours with unlimited rate and byte quotas. The returned
// ExpiresAt is computed locally for display; the controller enforces its
// own timer from the minutes field.
func (c *Client) AuthorizeDevice(ctx context.Context, mac string, durationHours int) (*AuthorizeResult, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	mac = NormalizeMAC(mac)
	if durationHours <= 0 {
		durationHours = DefaultAuthorizeHours
	}

	cmd := authorizeGuestCommand{
		Cmd:     "authorize-guest",
		MAC:     mac,
		Minutes: durationHours * 60,
	}

	if err := c.do(ctx, http.MethodPost, c.stationManagerPath(), cmd, nil); err != nil {
		return nil, errors.Wrapf(err, "failed to authorize device %s", mac)
	}

	c.logger.Info("device authorized",
		observability.Field{Key: "mac", Value: mac},
		observability.Field{Key: "duration_hours", Value: durationHours},
	)

	now := time.Now()

	return &AuthorizeResult{
		Authorized:    true,
		MACAddress:    mac,
		DurationHours: durationHours,
		ExpiresAt:     now.Add(time.Duration(durationHours) * time.Hour),
		Timestamp:     now,
	}, nil
}

// GetDeviceStatus looks the device up in the controller's active-clients
// list. A device that is not currently connected yields Found false with
// no error; only controller and transport failures return one.
func (c *Client) GetDeviceStatus(ctx context.Context, mac string) (*DeviceStatus, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	mac = NormalizeMAC(mac)

	var clients activeClientList
	if err := c.do(ctx, http.MethodGet, c.activeClientsPath(), nil, &clients); err != nil {
		return nil, errors.Wrapf(err, "failed to look up device %s", mac)
	}

	for _, client := range clients.Data {
		if !strings.EqualFold(client.MAC, mac) {
			continue
		}

		hostname := client.Hostname
		if hostname == "" {
			hostname = client.Name
		}

		return &DeviceStatus{
			Found:      true,
			MACAddress: mac,
			IsOnline:   true,
			IPAddress:  client.IP,
			Hostname:   hostname,
			IsGuest:    client.IsGuest,
			LastSeen:   client.LastSeen,
			BytesRx:    client.RxBytes,
			BytesTx:    client.TxBytes,
			Signal:     client.Signal,
			APMAC:      client.APMAC,
			Network:    client.Network,
			Timestamp:  time.Now(),
		}, nil
	}

	return &DeviceStatus{
		Found:      false,
		MACAddress: mac,
		IsOnline:   false,
		Timestamp:  time.Now(),
	}, nil
}

// ListBlockedDevices returns the devices currently blocked by this
// portal, identified by drop rules whose name carries the block prefix.
func (c *Client) ListBlockedDevices(ctx context.Context) ([]BlockedDevice, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	var rules firewallRuleList
	if err := c.do(ctx, http.MethodGet, c.firewallRulesPath(), nil, &rules); err != nil {
		return nil, errors.Wrap(err, "failed to list firewall rules")
	}

	blocked := []BlockedDevice{}
	for _, rule := range rules.Data {
		if rule.Action != blockAction || rule.SrcMACAddress == "" || !strings.HasPrefix(rule.Name, blockRulePrefix) {
			continue
		}

		device := BlockedDevice{
			MACAddress: rule.SrcMACAddress,
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			Enabled:    rule.Enabled,
			Note:       rule.Note,
		}
		if rule.AttrNoEdit != nil {
			device.Created = rule.AttrNoEdit.CreatedDate
		}

		blocked = append(blocked, device)
	}

	return blocked, nil
}

// GetNetworkStats counts the controller's active clients, split into
// guests and authenticated (non-guest) devices.
func (c *Client) GetNetworkStats(ctx context.Context) (*NetworkStats, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	var clients activeClientList
	if err := c.do(ctx, http.MethodGet, c.activeClientsPath(), nil, &clients); err != nil {
		return nil, errors.Wrap(err, "failed to fetch active clients")
	}

	guests := 0
	for _, client := range clients.Data {
		if client.IsGuest {
			guests++
		}
	}

	total := len(clients.Data)

	return &NetworkStats{
		ActiveClients:        total,
		GuestClients:         guests,
		AuthenticatedClients: total - guests,
		Timestamp:            time.Now(),
	}, nil
}

// GetSiteInfo returns the configured site's metadata. A controller that
// reports no matching site yields a zero SiteInfo with no error.
func (c *Client) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	if !c.configured() {
		return nil, errors.WithStack(ErrNotConfigured)
	}

	var sites siteList
	if err := c.do(ctx, http.MethodGet, c.sitePath(), nil, &sites); err != nil {
		return nil, errors.Wrap(err, "failed to fetch site info")
	}

	if len(sites.Data) == 0 {
		return &SiteInfo{}, nil
	}

	return &sites.Data[0], nil
}

// HealthCheck probes the controller's health endpoint. It never returns
// an error; failures are folded into the status so the gateway's health
// aggregation stays total.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if !c.configured() {
		return &HealthStatus{
			Status: "unavailable",
			Error:  "controller credentials not configured",
		}
	}

	var subsystems subsystemList
	if err := c.do(ctx, http.MethodGet, c.healthPath(), nil, &subsystems); err != nil {
		return &HealthStatus{
			Status:        "error",
			ControllerURL: c.controllerURL,
			Error:         err.Error(),
		}
	}

	return &HealthStatus{
		Status:        "healthy",
		ControllerURL: c.controllerURL,
		Site:          c.site,
		LastAuth:      c.LastAuth(),
		Subsystems:    subsystems.Data,
	}
}

// disconnect kicks a live client off the network so a freshly created
// block rule takes effect immediately.
func (c *Client) disconnect(ctx context.Context, mac string) error {
	cmd := kickStationCommand{Cmd: "kick-sta", MAC: mac}

	if err := c.do(ctx, http.MethodPost, c.stationManagerPath(), cmd, nil); err != nil {
		return errors.Wrapf(err, "failed to disconnect client %s", mac)
	}

	return nil
}
