package probe

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/cxn/internal/domain"
)

var errNoSuchHost = errors.New("no such host")

const (
	msgNoSuchHost     = "no such host"
	msgTimeout        = "timeout"
	msgNoAddresses    = "no addresses found"
	msgInvalidName    = "invalid hostname"
	defaultDNSTimeout = 3 * time.Second
)

// addrLookup is the transport behind DNSResolver.
type addrLookup interface {
	lookup(ctx context.Context, host string, includeIPv6 bool) ([]netip.Addr, error)
}

// DNSResolver implements Resolver over the OS resolver or a set of explicit
// nameservers. Each attempt is bounded by Timeout; temporary failures are
// retried up to Attempts times.
type DNSResolver struct {
	backend  addrLookup
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
	Logger   *zap.Logger
}

// NewSystemResolver uses the platform resolver configuration.
func NewSystemResolver(timeout time.Duration, attempts int, logger *zap.Logger) *DNSResolver {
	return newDNSResolver(systemLookup{r: &net.Resolver{}}, timeout, attempts, logger)
}

func newDNSResolver(b addrLookup, timeout time.Duration, attempts int, logger *zap.Logger) *DNSResolver {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DNSResolver{
		backend:  b,
		Timeout:  timeout,
		Attempts: attempts,
		Backoff:  100 * time.Millisecond,
		Logger:   logger,
	}
}

func (r *DNSResolver) Lookup(ctx context.Context, hostname string, includeIPv6 bool) domain.ResolutionOutcome {
	host := strings.TrimSpace(hostname)
	if host == "" || strings.Contains(host, "://") {
		return domain.ResolutionFailed(domain.FailureAddressUnresolvable, msgInvalidName)
	}

	addrs, err := r.lookupWithRetry(ctx, host, includeIPv6)
	if err != nil {
		msg := describeLookupError(err)
		r.Logger.Debug("dns_lookup_failed",
			zap.String("host", host),
			zap.String("reason", msg),
			zap.Error(err),
		)
		return domain.ResolutionFailed(domain.FailureAddressUnresolvable, msg)
	}

	kept := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		a = a.Unmap()
		if a.Is4() || includeIPv6 {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return domain.ResolutionFailed(domain.FailureAddressUnresolvable, msgNoAddresses)
	}
	return domain.Resolved(kept)
}

type systemLookup struct {
	r *net.Resolver
}

func (s systemLookup) lookup(ctx context.Context, host string, _ bool) ([]netip.Addr, error) {
	return s.r.LookupNetIP(ctx, "ip", host)
}

func describeLookupError(err error) string {
	if errors.Is(err, errNoSuchHost) {
		return msgNoSuchHost
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		switch {
		case de.IsNotFound:
			return msgNoSuchHost
		case de.IsTimeout:
			return msgTimeout
		}
	}
	if isTimeout(err) {
		return msgTimeout
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isTemporaryLookup decides whether another attempt could succeed.
func isTemporaryLookup(err error) bool {
	if errors.Is(err, errNoSuchHost) || errors.Is(err, context.Canceled) {
		return false
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return false
		}
		return de.IsTemporary || de.IsTimeout
	}
	return isTimeout(err)
}
