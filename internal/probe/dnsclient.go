package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// NewNameserverResolver queries the given nameservers directly instead of the
// OS resolver. Servers are tried in order; "host" or "host:port" forms are
// accepted, port 53 is the default.
func NewNameserverResolver(servers []string, timeout time.Duration, attempts int, logger *zap.Logger) (*DNSResolver, error) {
	if len(servers) == 0 {
		return nil, errors.New("no nameservers given")
	}
	addrs := make([]string, 0, len(servers))
	for _, s := range servers {
		a, err := nameserverAddr(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	b := &nameserverLookup{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		servers: addrs,
	}
	return newDNSResolver(b, timeout, attempts, logger), nil
}

func nameserverAddr(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty nameserver")
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.String(), nil
	}
	if ip, err := netip.ParseAddr(s); err == nil {
		return netip.AddrPortFrom(ip, 53).String(), nil
	}
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s, nil
	}
	return net.JoinHostPort(s, "53"), nil
}

type nameserverLookup struct {
	client  *dns.Client
	servers []string
}

func (n *nameserverLookup) lookup(ctx context.Context, host string, includeIPv6 bool) ([]netip.Addr, error) {
	qtypes := []uint16{dns.TypeA}
	if includeIPv6 {
		qtypes = append(qtypes, dns.TypeAAAA)
	}

	var out []netip.Addr
	var lastErr error
	for _, qt := range qtypes {
		addrs, err := n.query(ctx, host, qt)
		if errors.Is(err, errNoSuchHost) {
			return nil, err
		}
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, addrs...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (n *nameserverLookup) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range n.servers {
		resp, _, err := n.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		switch resp.Rcode {
		case dns.RcodeSuccess:
			return answerAddrs(resp), nil
		case dns.RcodeNameError:
			return nil, errNoSuchHost
		default:
			lastErr = &net.DNSError{
				Err:         fmt.Sprintf("server answered %s", dns.RcodeToString[resp.Rcode]),
				Name:        host,
				Server:      server,
				IsTemporary: resp.Rcode == dns.RcodeServerFailure,
			}
		}
	}
	return nil, lastErr
}

func answerAddrs(resp *dns.Msg) []netip.Addr {
	var out []netip.Addr
	for _, rr := range resp.Answer {
		var raw net.IP
		switch v := rr.(type) {
		case *dns.A:
			raw = v.A
		case *dns.AAAA:
			raw = v.AAAA
		default:
			continue
		}
		if a, ok := netip.AddrFromSlice(raw); ok {
			out = append(out, a.Unmap())
		}
	}
	return out
}
