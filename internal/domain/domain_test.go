package domain

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHostResult_IsSuccess(t *testing.T) {
	ok := Reached(10 * time.Millisecond)
	failedPing := ProbeFailed(FailureProbeTimeout, "timeout after 1000ms")
	resolved := Resolved([]netip.Addr{netip.MustParseAddr("93.184.216.34")})
	failedDNS := ResolutionFailed(FailureAddressUnresolvable, "no such host")

	cases := []struct {
		name string
		in   HostResult
		want bool
	}{
		{"no checks is vacuously ok", HostResult{Name: "x"}, true},
		{"ping ok", HostResult{Probe: &ok}, true},
		{"ping failed", HostResult{Probe: &failedPing}, false},
		{"dns failed", HostResult{Resolution: &failedDNS}, false},
		{"both ok", HostResult{Resolution: &resolved, Probe: &ok}, true},
		{"dns ok ping failed", HostResult{Resolution: &resolved, Probe: &failedPing}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.in.IsSuccess(), c.name)
	}
}

func TestHostSpec_ShouldResolveDNS(t *testing.T) {
	assert.False(t, HostSpec{Address: "8.8.8.8", WantDNS: true}.ShouldResolveDNS())
	assert.False(t, HostSpec{Address: "2001:4860:4860::8888", WantDNS: true}.ShouldResolveDNS())
	assert.True(t, HostSpec{Address: "github.com", WantDNS: true}.ShouldResolveDNS())
	assert.False(t, HostSpec{Address: "github.com", WantPing: true}.ShouldResolveDNS())
}

func TestSummarize_ExcludesHostsWithoutChecks(t *testing.T) {
	ok := Reached(time.Millisecond)
	bad := ProbeFailed(FailureProbeTimeout, "timeout")
	hosts := []HostSpec{
		{Name: "a", Address: "1.1.1.1", WantPing: true},
		{Name: "idle", Address: "2.2.2.2"},
		{Name: "b", Address: "3.3.3.3", WantPing: true},
	}
	results := []HostResult{
		{Name: "a", Probe: &ok},
		{Name: "idle"},
		{Name: "b", Probe: &bad},
	}

	got := Summarize(hosts, results)
	assert.Equal(t, Tally{Checked: 2, Succeeded: 1}, got)
	assert.Equal(t, 1, got.Failed())
	assert.False(t, got.AllOK())
}
