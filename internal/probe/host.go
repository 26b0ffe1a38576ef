package probe

import (
	"context"
	"net/netip"
	"time"

	"github.com/hamed0406/cxn/internal/domain"
)

// echoesPerCheck is the number of echo requests sent per host per cycle.
const echoesPerCheck = 1

// CheckHost runs the DNS-then-ping sequence for one host. It never fails:
// resolver and pinger problems end up inside the returned result.
//
// Target precedence: an IP literal is used as is; otherwise a requested DNS
// check (both families) is recorded and its first address used; otherwise, if
// only ping was requested, an unrecorded primary-family lookup supplies the
// target.
func CheckHost(ctx context.Context, host domain.HostSpec, resolver Resolver, pinger Pinger, timeout time.Duration) domain.HostResult {
	res := domain.HostResult{Name: host.Name, Address: host.Address}

	target, haveTarget := host.LiteralIP()

	switch {
	case host.ShouldResolveDNS():
		dns := resolver.Lookup(ctx, host.Address, true)
		res.Resolution = &dns
		target, haveTarget = dns.First()
	case !haveTarget && host.WantPing:
		if lookup := resolver.Lookup(ctx, host.Address, false); lookup.Succeeded {
			target, haveTarget = lookup.First()
		}
	}

	if !host.WantPing {
		return res
	}

	var ping domain.ProbeOutcome
	switch {
	case haveTarget:
		ping = pinger.Probe(ctx, target, timeout, echoesPerCheck)
	case res.Resolution != nil && !res.Resolution.Succeeded:
		// the failed DNS check already reports why there is nothing to ping
		return res
	default:
		ping = domain.ProbeFailed(domain.FailureAddressUnresolvable, domain.MsgCouldNotResolve)
	}
	res.Probe = &ping
	return res
}

// TargetFor returns the address the ping subcommand should use for a host
// argument: the literal itself, or the first primary-family address.
func TargetFor(ctx context.Context, resolver Resolver, host string) (netip.Addr, domain.ResolutionOutcome) {
	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		return ip, domain.Resolved([]netip.Addr{ip})
	}
	out := resolver.Lookup(ctx, host, false)
	ip, _ := out.First()
	return ip, out
}
