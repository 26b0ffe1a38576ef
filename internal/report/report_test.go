package report

import (
	"bytes"
	"errors"
	"net/netip"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/cxn/internal/domain"
	"github.com/hamed0406/cxn/internal/probe"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func ptrDNS(o domain.ResolutionOutcome) *domain.ResolutionOutcome { return &o }
func ptrPing(o domain.ProbeOutcome) *domain.ProbeOutcome          { return &o }

func sampleResults() []domain.HostResult {
	return []domain.HostResult{
		{
			Name:    "google",
			Address: "8.8.8.8",
			Probe:   ptrPing(domain.Reached(12300 * time.Microsecond)),
		},
		{
			Name:       "broken",
			Address:    "nonexistent.invalid",
			Resolution: ptrDNS(domain.ResolutionFailed(domain.FailureAddressUnresolvable, "no such host")),
		},
		{
			Name:       "example",
			Address:    "example.com",
			Resolution: ptrDNS(domain.Resolved([]netip.Addr{netip.MustParseAddr("93.184.216.34"), netip.MustParseAddr("2606:2800::1")})),
			Probe:      ptrPing(domain.ProbeFailed(domain.FailureProbeTimeout, "timeout after 1000ms")),
		},
	}
}

func TestVerbose_PrintsHostsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	v := &Verbose{Out: &buf, Hosts: 3}

	v.BeginCycle(time.Now(), 0)
	require.NoError(t, v.Present(sampleResults(), domain.Tally{Checked: 3, Succeeded: 1}, 1234*time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Checking 3 hosts...\n\n"))
	assert.Contains(t, out, "google (8.8.8.8)\n  ✓ ping: 12.3ms\n")
	assert.Contains(t, out, "broken (nonexistent.invalid)\n  ✗ dns:  no such host\n\n")
	assert.Contains(t, out, "  ✓ dns:  93.184.216.34, 2606:2800::1\n  ✗ ping: timeout after 1000ms\n")
	assert.True(t, strings.HasSuffix(out, "Summary: 1/3 hosts OK, 2 failed in 1.2s\n"))
}

func TestSummary_AllOK(t *testing.T) {
	assert.Equal(t, "Summary: 2/2 hosts OK in 0.5s", Summary(domain.Tally{Checked: 2, Succeeded: 2}, 500*time.Millisecond))
	assert.Equal(t, "Summary: 0/0 hosts OK in 0.0s", Summary(domain.Tally{}, 0))
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tb := &Table{Out: &buf}

	at := time.Date(2024, 5, 1, 9, 8, 7, 0, time.Local)
	tb.BeginCycle(at, 5*time.Second)
	require.NoError(t, tb.Present(sampleResults(), domain.Tally{}, 0))

	want := "cxn [09:08:07] (every 5s)\n\n" +
		"NAME       PING  DNS\n" +
		"google   12.3ms  -\n" +
		"broken        -  fail\n" +
		"example    fail  93.184.216.34\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_ClearsScreen(t *testing.T) {
	var buf bytes.Buffer
	tb := &Table{Out: &buf, Clear: true}
	tb.BeginCycle(time.Now(), time.Second)
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
}

func TestPing_Transcript(t *testing.T) {
	rep := probe.PingReport{
		Address: netip.MustParseAddr("1.1.1.1"),
		Timeout: time.Second,
		Replies: []probe.EchoReply{
			{Seq: 0, RTT: 10 * time.Millisecond},
			{Seq: 1, Err: errors.New("boom")},
			{Seq: 2, RTT: 14 * time.Millisecond},
		},
	}
	var buf bytes.Buffer
	Ping(&buf, rep)

	want := "PING 1.1.1.1\n" +
		"  64 bytes: seq=0 time=10.0ms\n" +
		"  seq=1: boom\n" +
		"  64 bytes: seq=2 time=14.0ms\n" +
		"\n" +
		"--- 1.1.1.1 ping statistics ---\n" +
		"3 packets transmitted, 2 received, 33% packet loss\n" +
		"rtt min/avg/max = 10.0/12.0/14.0 ms\n"
	assert.Equal(t, want, buf.String())
}

func TestPing_NothingReceivedHasNoRTTLine(t *testing.T) {
	rep := probe.PingReport{Address: netip.MustParseAddr("10.9.9.9"), Replies: []probe.EchoReply{{Err: errors.New("x")}}}
	var buf bytes.Buffer
	Ping(&buf, rep)
	assert.Contains(t, buf.String(), "1 packets transmitted, 0 received, 100% packet loss\n")
	assert.NotContains(t, buf.String(), "rtt")
}

func TestDNS_Families(t *testing.T) {
	out := domain.Resolved([]netip.Addr{
		netip.MustParseAddr("192.0.2.1"),
		netip.MustParseAddr("192.0.2.2"),
	})

	var buf bytes.Buffer
	DNS(&buf, "example.test", out, true)
	assert.Equal(t, "example.test\n  A:    192.0.2.1\n        192.0.2.2\n  AAAA: (none)\n", buf.String())

	buf.Reset()
	DNS(&buf, "example.test", out, false)
	assert.NotContains(t, buf.String(), "AAAA")
}

func TestDNS_Error(t *testing.T) {
	var buf bytes.Buffer
	DNS(&buf, "nope.invalid", domain.ResolutionFailed(domain.FailureAddressUnresolvable, "no such host"), false)
	assert.Equal(t, "nope.invalid\n  Error: no such host\n", buf.String())
}

type stubPresenter struct {
	began   int
	present int
	err     error
}

func (s *stubPresenter) BeginCycle(time.Time, time.Duration) { s.began++ }
func (s *stubPresenter) Present([]domain.HostResult, domain.Tally, time.Duration) error {
	s.present++
	return s.err
}

func TestMulti_CallsEveryPresenter(t *testing.T) {
	a := &stubPresenter{err: errors.New("a failed")}
	b := &stubPresenter{}
	c := &stubPresenter{err: errors.New("c failed")}
	m := Multi{a, nil, b, c}

	m.BeginCycle(time.Now(), 0)
	err := m.Present(nil, domain.Tally{}, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "c failed")
	for _, p := range []*stubPresenter{a, b, c} {
		assert.Equal(t, 1, p.began)
		assert.Equal(t, 1, p.present)
	}
}

func TestNoHostsAndStopped(t *testing.T) {
	var buf bytes.Buffer
	NoHosts(&buf)
	Stopped(&buf)
	assert.Contains(t, buf.String(), "No hosts configured\n")
	assert.True(t, strings.HasSuffix(buf.String(), "\n\nWatch mode stopped.\n"))
}
