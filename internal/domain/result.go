package domain

import (
	"net/netip"
	"time"
)

// FailureKind classifies why a check failed.
type FailureKind string

const (
	FailureNone                FailureKind = ""
	FailureAddressUnresolvable FailureKind = "address_unresolvable"
	FailureProbeTimeout        FailureKind = "probe_timeout"
	FailureProbeTransport      FailureKind = "probe_transport"
	FailureAllAttemptsFailed   FailureKind = "all_attempts_failed"
	FailureInternal            FailureKind = "internal"
)

// Message set on a ping outcome when no target address could be obtained.
const MsgCouldNotResolve = "could not resolve hostname"

// ResolutionOutcome is the result of a DNS lookup.
type ResolutionOutcome struct {
	Succeeded bool         `json:"succeeded"`
	Addresses []netip.Addr `json:"addresses,omitempty"`
	Error     string       `json:"error,omitempty"`
	Kind      FailureKind  `json:"kind,omitempty"`
}

// ProbeOutcome is the result of an ICMP echo probe. RTT is nil on failure.
type ProbeOutcome struct {
	Succeeded bool           `json:"succeeded"`
	RTT       *time.Duration `json:"rtt,omitempty"`
	Error     string         `json:"error,omitempty"`
	Kind      FailureKind    `json:"kind,omitempty"`
}

func Resolved(addrs []netip.Addr) ResolutionOutcome {
	return ResolutionOutcome{Succeeded: true, Addresses: addrs}
}

func ResolutionFailed(kind FailureKind, msg string) ResolutionOutcome {
	return ResolutionOutcome{Kind: kind, Error: msg}
}

func Reached(rtt time.Duration) ProbeOutcome {
	return ProbeOutcome{Succeeded: true, RTT: &rtt}
}

func ProbeFailed(kind FailureKind, msg string) ProbeOutcome {
	return ProbeOutcome{Kind: kind, Error: msg}
}

// First returns the first resolved address, if any.
func (r ResolutionOutcome) First() (netip.Addr, bool) {
	if !r.Succeeded || len(r.Addresses) == 0 {
		return netip.Addr{}, false
	}
	return r.Addresses[0], true
}

// HostResult holds the checks performed for one host during one cycle.
// A nil Resolution or Probe means that check was not performed.
type HostResult struct {
	Name       string             `json:"name"`
	Address    string             `json:"address"`
	Resolution *ResolutionOutcome `json:"dns,omitempty"`
	Probe      *ProbeOutcome      `json:"ping,omitempty"`
}

// IsSuccess is the AND over the checks that are present. A check that was
// never performed counts as passed.
func (r HostResult) IsSuccess() bool {
	if r.Resolution != nil && !r.Resolution.Succeeded {
		return false
	}
	if r.Probe != nil && !r.Probe.Succeeded {
		return false
	}
	return true
}

// Tally is the aggregate over a cycle. Hosts without any enabled check are
// excluded from both counts.
type Tally struct {
	Checked   int `json:"checked"`
	Succeeded int `json:"succeeded"`
}

func (t Tally) Failed() int { return t.Checked - t.Succeeded }

func (t Tally) AllOK() bool { return t.Succeeded == t.Checked }

// Summarize builds the tally; hosts[i] must correspond to results[i].
func Summarize(hosts []HostSpec, results []HostResult) Tally {
	var t Tally
	for i, h := range hosts {
		if !h.HasChecks() {
			continue
		}
		t.Checked++
		if i < len(results) && results[i].IsSuccess() {
			t.Succeeded++
		}
	}
	return t
}
