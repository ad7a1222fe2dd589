package unifi

import "strings"

// macSeparators strips the separator styles seen in user input and
// controller output: colons, hyphens, Cisco-style dots.
var macSeparators = strings.NewReplacer(":", "", "-", "", ".", "")

// NormalizeMAC canonicalizes a device MAC address to six lowercase
// colon-separated byte pairs, accepting colon, hyphen, dot, or bare input.
// Input that does not reduce to exactly 12 characters is returned lowercased
// but otherwise unchanged, which keeps the function total and idempotent.
func NormalizeMAC(mac string) string {
	if mac == "" {
		return ""
	}

	cleaned := strings.ToLower(macSeparators.Replace(mac))
	if len(cleaned) != 12 {
		return strings.ToLower(mac)
	}

	pairs := make([]string, 0, 6)
	for i := 0; i < len(cleaned); i += 2 {
		pairs = append(pairs, cleaned[i:i+2])
	}

	return strings.Join(pairs, ":")
}

// BlockRuleName derives the firewall rule name for a blocked device. The
// name is deterministic so unblock can find rules created by block without
// any local bookkeeping.
func BlockRuleName(mac string) string {
	return blockRulePrefix + strings.ReplaceAll(NormalizeMAC(mac), ":", "_")
}
