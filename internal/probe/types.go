package probe

import (
	"context"
	"net/netip"
	"time"

	"github.com/hamed0406/cxn/internal/domain"
)

// Resolver looks up a hostname. includeIPv6=false keeps IPv4 addresses only.
// Implementations must be safe for concurrent use and report failures inside
// the outcome rather than returning errors.
type Resolver interface {
	Lookup(ctx context.Context, hostname string, includeIPv6 bool) domain.ResolutionOutcome
}

// Pinger sends count echo requests to ip, each bounded by timeout. Success
// carries the mean RTT of the answered echoes; when none are answered the
// outcome holds the last observed error. Must be safe for concurrent use
// across different addresses.
type Pinger interface {
	Probe(ctx context.Context, ip netip.Addr, timeout time.Duration, count int) domain.ProbeOutcome
}
