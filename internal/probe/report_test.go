package probe

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/cxn/internal/domain"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestPingReport_PartialSuccessUsesMeanOfAnswered(t *testing.T) {
	rep := PingReport{
		Address: netip.MustParseAddr("8.8.8.8"),
		Timeout: time.Second,
		Replies: []EchoReply{
			{Seq: 0, RTT: 10 * time.Millisecond},
			{Seq: 1, RTT: 12 * time.Millisecond},
			{Seq: 2, Err: timeoutErr{}},
			{Seq: 3, RTT: 11 * time.Millisecond},
		},
	}

	assert.Equal(t, 4, rep.Sent())
	assert.Equal(t, 3, rep.Received())
	assert.InDelta(t, 25.0, rep.Loss(), 1e-9)

	minRTT, avg, maxRTT, ok := rep.RTTStats()
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, minRTT)
	assert.Equal(t, 11*time.Millisecond, avg)
	assert.Equal(t, 12*time.Millisecond, maxRTT)

	out := rep.Outcome()
	require.True(t, out.Succeeded)
	require.NotNil(t, out.RTT)
	assert.Equal(t, 11*time.Millisecond, *out.RTT)
}

func TestPingReport_AllFailedKeepsLastError(t *testing.T) {
	rep := PingReport{
		Timeout: 1500 * time.Millisecond,
		Replies: []EchoReply{
			{Seq: 0, Err: syscall.EHOSTUNREACH},
			{Seq: 1, Err: timeoutErr{}},
		},
	}
	out := rep.Outcome()
	assert.False(t, out.Succeeded)
	assert.Nil(t, out.RTT)
	assert.Equal(t, "timeout after 1500ms", out.Error)
	assert.Equal(t, domain.FailureAllAttemptsFailed, out.Kind)
}

func TestPingReport_SingleEchoKinds(t *testing.T) {
	timedOut := PingReport{Timeout: time.Second, Replies: []EchoReply{{Err: timeoutErr{}}}}
	assert.Equal(t, domain.FailureProbeTimeout, timedOut.Outcome().Kind)

	denied := PingReport{Replies: []EchoReply{{Err: fmt.Errorf("socket: %w", syscall.EPERM)}}}
	out := denied.Outcome()
	assert.Equal(t, domain.FailureProbeTransport, out.Kind)
	assert.Equal(t, "permission denied (need cap_net_raw)", out.Error)
}

func TestDescribePingError(t *testing.T) {
	assert.Equal(t, "timeout after 1000ms", describePingError(timeoutErr{}, time.Second))
	assert.Equal(t, "permission denied (need cap_net_raw)", describePingError(os.ErrPermission, 0))
	assert.Equal(t, "network unreachable", describePingError(syscall.ENETUNREACH, 0))
	assert.Equal(t, "no route to host", describePingError(syscall.EHOSTUNREACH, 0))
	assert.Equal(t, "boom", describePingError(errors.New("boom"), 0))
}

func TestPingReport_EmptyHasNoStats(t *testing.T) {
	var rep PingReport
	_, _, _, ok := rep.RTTStats()
	assert.False(t, ok)
	assert.Zero(t, rep.Loss())
	assert.False(t, rep.Outcome().Succeeded)
}
