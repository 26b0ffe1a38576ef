package domain

import (
	"net/netip"
	"strings"
)

// HostSpec is one configured host. It is read-only once loaded.
type HostSpec struct {
	Name     string `json:"name"`
	Address  string `json:"address"` // literal IP or hostname
	WantPing bool   `json:"ping"`
	WantDNS  bool   `json:"dns"`
}

// LiteralIP reports the parsed address when Address is an IP literal.
func (h HostSpec) LiteralIP() (netip.Addr, bool) {
	ip, err := netip.ParseAddr(strings.TrimSpace(h.Address))
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

// HasChecks is true when at least one check is enabled.
func (h HostSpec) HasChecks() bool {
	return h.WantPing || h.WantDNS
}

// ShouldResolveDNS is false for IP literals: a lookup would be redundant.
func (h HostSpec) ShouldResolveDNS() bool {
	if !h.WantDNS {
		return false
	}
	_, isIP := h.LiteralIP()
	return !isIP
}
