package unifi

import "time"

// Wire types for the controller's proxy API. List endpoints wrap their
// payload in a data envelope; single-object endpoints return the object
// bare.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// firewallRule mirrors the v2 firewall rule record. Only the fields the
// portal reads are mapped.
type firewallRule struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Ruleset       string          `json:"ruleset"`
	RuleIndex     int             `json:"rule_index"`
	Action        string          `json:"action"`
	Protocol      string          `json:"protocol"`
	SrcMACAddress string          `json:"src_mac_address"`
	Enabled       bool            `json:"enabled"`
	Logging       bool            `json:"logging"`
	Note          string          `json:"note"`
	AttrNoEdit    *ruleAttributes `json:"attr_no_edit,omitempty"`
}

type ruleAttributes struct {
	CreatedDate string `json:"created_date"`
}

// firewallRuleInput is the creation payload for a block rule. The
// controller assigns the _id.
type firewallRuleInput struct {
	Name          string `json:"name"`
	Ruleset       string `json:"ruleset"`
	RuleIndex     int    `json:"rule_index"`
	Action        string `json:"action"`
	Protocol      string `json:"protocol"`
	SrcMACAddress string `json:"src_mac_address"`
	Enabled       bool   `json:"enabled"`
	Logging       bool   `json:"logging"`
}

type firewallRuleList struct {
	Data []firewallRule `json:"data"`
}

// activeClient is one entry from the active-clients list.
type activeClient struct {
	MAC        string `json:"mac"`
	IP         string `json:"ip"`
	Hostname   string `json:"hostname"`
	Name       string `json:"name"`
	IsGuest    bool   `json:"is_guest"`
	Authorized bool   `json:"authorized"`
	LastSeen   int64  `json:"last_seen"`
	RxBytes    int64  `json:"rx_bytes"`
	TxBytes    int64  `json:"tx_bytes"`
	Signal     int    `json:"signal"`
	APMAC      string `json:"ap_mac"`
	Network    string `json:"network"`
}

type activeClientList struct {
	Data []activeClient `json:"data"`
}

// authorizeGuestCommand is the stamgr payload granting guest access. The
// zero quota fields mean unlimited and must be present in the JSON, so
// none of them carry omitempty.
type authorizeGuestCommand struct {
	Cmd     string `json:"cmd"`
	MAC     string `json:"mac"`
	Minutes int    `json:"minutes"`
	Up      int    `json:"up"`
	Down    int    `json:"down"`
	Bytes   int    `json:"bytes"`
}

type kickStationCommand struct {
	Cmd string `json:"cmd"`
	MAC string `json:"mac"`
}

type siteList struct {
	Data []SiteInfo `json:"data"`
}

type subsystemList struct {
	Data []SubsystemHealth `json:"data"`
}

// Result types returned to the gateway. JSON keys match the portal's REST
// contract.

// BlockResult summarizes a block operation.
type BlockResult struct {
	Blocked        bool      `json:"blocked"`
	MACAddress     string    `json:"mac_address"`
	Reason         string    `json:"reason"`
	FirewallRuleID string    `json:"firewall_rule_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// UnblockResult summarizes an unblock operation. DeletedRules holds the
// ids of every rule actually removed; rules whose deletion failed are
// logged and left out.
type UnblockResult struct {
	Unblocked    bool      `json:"unblocked"`
	MACAddress   string    `json:"mac_address"`
	DeletedRules []string  `json:"deleted_rules"`
	Timestamp    time.Time `json:"timestamp"`
}

// AuthorizeResult summarizes a guest authorization. ExpiresAt is computed
// locally for caller display; the controller keeps its own clock.
type AuthorizeResult struct {
	Authorized    bool      `json:"authorized"`
	MACAddress    string    `json:"mac_address"`
	DurationHours int       `json:"duration_hours"`
	ExpiresAt     time.Time `json:"expires_at"`
	Timestamp     time.Time `json:"timestamp"`
}

// DeviceStatus describes one device as seen by the controller. When Found
// is false only MACAddress, IsOnline, and Timestamp are meaningful.
type DeviceStatus struct {
	Found      bool      `json:"found"`
	MACAddress string    `json:"mac_address"`
	IsOnline   bool      `json:"is_online"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
	IsGuest    bool      `json:"is_guest,omitempty"`
	LastSeen   int64     `json:"last_seen,omitempty"`
	BytesRx    int64     `json:"bytes_rx,omitempty"`
	BytesTx    int64     `json:"bytes_tx,omitempty"`
	Signal     int       `json:"signal,omitempty"`
	APMAC      string    `json:"ap_mac,omitempty"`
	Network    string    `json:"network,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// BlockedDevice is one entry in the blocked-device inventory, projected
// from a block rule.
type BlockedDevice struct {
	MACAddress string `json:"mac_address"`
	RuleID     string `json:"rule_id"`
	RuleName   string `json:"rule_name"`
	Enabled    bool   `json:"enabled"`
	Created    string `json:"created,omitempty"`
	Note       string `json:"note,omitempty"`
}

// NetworkStats is a head count of the active-clients list.
type NetworkStats struct {
	ActiveClients        int       `json:"active_clients"`
	GuestClients         int       `json:"guest_clients"`
	AuthenticatedClients int       `json:"authenticated_clients"`
	Timestamp            time.Time `json:"timestamp"`
}

// SiteInfo describes the configured controller site.
type SiteInfo struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
}

// SubsystemHealth is one subsystem entry from the controller's health
// endpoint, for example wan or wlan.
type SubsystemHealth struct {
	Subsystem string `json:"subsystem"`
	Status    string `json:"status"`
}

// HealthStatus reports whether the controller integration is usable.
// Status is one of healthy, error, or unavailable.
type HealthStatus struct {
	Status        string            `json:"status"`
	ControllerURL string            `json:"controller_url,omitempty"`
	Site          string            `json:"site,omitempty"`
	LastAuth      *time.Time        `json:"last_auth,omitempty"`
	Subsystems    []SubsystemHealth `json:"subsystems,omitempty"`
	Error         string            `json:"error,omitempty"`
}
