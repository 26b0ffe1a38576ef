package probe

import (
	"context"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/cxn/internal/domain"
)

// ---- fakes ----

type lookupCall struct {
	host        string
	includeIPv6 bool
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []lookupCall
	out   map[string]domain.ResolutionOutcome
}

func (f *fakeResolver) Lookup(_ context.Context, host string, includeIPv6 bool) domain.ResolutionOutcome {
	f.mu.Lock()
	f.calls = append(f.calls, lookupCall{host, includeIPv6})
	f.mu.Unlock()
	if o, ok := f.out[host]; ok {
		return o
	}
	return domain.ResolutionFailed(domain.FailureAddressUnresolvable, "no such host")
}

type fakePinger struct {
	mu    sync.Mutex
	pings []netip.Addr
	rtt   time.Duration
}

func (f *fakePinger) Probe(_ context.Context, ip netip.Addr, _ time.Duration, count int) domain.ProbeOutcome {
	f.mu.Lock()
	f.pings = append(f.pings, ip)
	f.mu.Unlock()
	return domain.Reached(f.rtt)
}

func addrs(s ...string) []netip.Addr {
	out := make([]netip.Addr, 0, len(s))
	for _, a := range s {
		out = append(out, netip.MustParseAddr(a))
	}
	return out
}

// ---- tests ----

func TestCheckHost_LiteralIPSkipsResolver(t *testing.T) {
	r := &fakeResolver{}
	p := &fakePinger{rtt: 10 * time.Millisecond}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "dns", Address: "8.8.8.8", WantPing: true, WantDNS: true},
		r, p, time.Second)

	assert.Empty(t, r.calls)
	assert.Nil(t, res.Resolution)
	require.NotNil(t, res.Probe)
	assert.True(t, res.Probe.Succeeded)
	assert.Equal(t, addrs("8.8.8.8"), p.pings)
}

func TestCheckHost_DNSFirstAddressIsPingTarget(t *testing.T) {
	r := &fakeResolver{out: map[string]domain.ResolutionOutcome{
		"github.com": domain.Resolved(addrs("140.82.121.3", "2001:db8::1")),
	}}
	p := &fakePinger{rtt: 5 * time.Millisecond}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "gh", Address: "github.com", WantPing: true, WantDNS: true},
		r, p, time.Second)

	assert.Equal(t, []lookupCall{{"github.com", true}}, r.calls)
	require.NotNil(t, res.Resolution)
	assert.True(t, res.Resolution.Succeeded)
	assert.Equal(t, addrs("140.82.121.3"), p.pings)
	assert.True(t, res.IsSuccess())
}

func TestCheckHost_PingOnlyLookupIsNotRecorded(t *testing.T) {
	r := &fakeResolver{out: map[string]domain.ResolutionOutcome{
		"example.com": domain.Resolved(addrs("93.184.216.34")),
	}}
	p := &fakePinger{}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "ex", Address: "example.com", WantPing: true},
		r, p, time.Second)

	assert.Equal(t, []lookupCall{{"example.com", false}}, r.calls)
	assert.Nil(t, res.Resolution)
	require.NotNil(t, res.Probe)
	assert.True(t, res.Probe.Succeeded)
}

func TestCheckHost_PingOnlyUnresolvable(t *testing.T) {
	r := &fakeResolver{}
	p := &fakePinger{}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "bad", Address: "bad.invalid", WantPing: true},
		r, p, time.Second)

	assert.Nil(t, res.Resolution)
	require.NotNil(t, res.Probe)
	assert.False(t, res.Probe.Succeeded)
	assert.Equal(t, domain.MsgCouldNotResolve, res.Probe.Error)
	assert.Equal(t, domain.FailureAddressUnresolvable, res.Probe.Kind)
	assert.Empty(t, p.pings, "pinger must not be called without an address")
}

func TestCheckHost_FailedDNSCheckOmitsPing(t *testing.T) {
	r := &fakeResolver{}
	p := &fakePinger{}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "B", Address: "bad.invalid", WantPing: true, WantDNS: true},
		r, p, time.Second)

	require.NotNil(t, res.Resolution)
	assert.False(t, res.Resolution.Succeeded)
	assert.Nil(t, res.Probe)
	assert.Empty(t, p.pings)
	assert.False(t, res.IsSuccess())
}

func TestCheckHost_DNSOnly(t *testing.T) {
	r := &fakeResolver{out: map[string]domain.ResolutionOutcome{
		"example.com": domain.Resolved(addrs("93.184.216.34")),
	}}
	p := &fakePinger{}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "ex", Address: "example.com", WantDNS: true},
		r, p, time.Second)

	require.NotNil(t, res.Resolution)
	assert.Nil(t, res.Probe)
	assert.Empty(t, p.pings)
}

func TestCheckHost_NoChecks(t *testing.T) {
	r := &fakeResolver{}
	p := &fakePinger{}

	res := CheckHost(context.Background(),
		domain.HostSpec{Name: "idle", Address: "example.com"},
		r, p, time.Second)

	assert.Nil(t, res.Resolution)
	assert.Nil(t, res.Probe)
	assert.True(t, res.IsSuccess())
	assert.Empty(t, r.calls)
}

func TestTargetFor(t *testing.T) {
	r := &fakeResolver{out: map[string]domain.ResolutionOutcome{
		"example.com": domain.Resolved(addrs("93.184.216.34")),
	}}

	ip, out := TargetFor(context.Background(), r, "1.1.1.1")
	assert.Equal(t, netip.MustParseAddr("1.1.1.1"), ip)
	assert.True(t, out.Succeeded)
	assert.Empty(t, r.calls)

	ip, out = TargetFor(context.Background(), r, "example.com")
	assert.Equal(t, netip.MustParseAddr("93.184.216.34"), ip)
	assert.True(t, out.Succeeded)

	ip, out = TargetFor(context.Background(), r, "nope.invalid")
	assert.False(t, ip.IsValid())
	assert.False(t, out.Succeeded)
}
