package probe

import (
	"context"
	"net/netip"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// lookupWithRetry runs the backend up to r.Attempts times, each attempt under
// its own timeout. Permanent answers such as NXDOMAIN stop immediately.
func (r *DNSResolver) lookupWithRetry(ctx context.Context, host string, includeIPv6 bool) ([]netip.Addr, error) {
	var addrs []netip.Addr
	err := retry.Do(
		func() error {
			actx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()
			got, err := r.backend.lookup(actx, host, includeIPv6)
			if err != nil {
				return err
			}
			addrs = got
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.Attempts)),
		retry.Delay(r.Backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTemporaryLookup),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.Logger.Debug("dns_lookup_retry",
				zap.String("host", host),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return addrs, nil
}
