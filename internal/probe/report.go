package probe

import (
	"net/netip"
	"time"

	"github.com/hamed0406/cxn/internal/domain"
)

// EchoReply is the result of one echo request. Err is nil when answered.
type EchoReply struct {
	Seq int
	RTT time.Duration
	Err error
}

// PingReport collects the replies of one Ping call.
type PingReport struct {
	Address netip.Addr
	Timeout time.Duration
	Replies []EchoReply
}

func (r PingReport) Sent() int { return len(r.Replies) }

func (r PingReport) Received() int {
	n := 0
	for _, e := range r.Replies {
		if e.Err == nil {
			n++
		}
	}
	return n
}

// Loss is the percentage of unanswered echoes.
func (r PingReport) Loss() float64 {
	if r.Sent() == 0 {
		return 0
	}
	return float64(r.Sent()-r.Received()) / float64(r.Sent()) * 100
}

// RTTStats returns min/avg/max over answered echoes; ok is false when none were.
func (r PingReport) RTTStats() (minRTT, avgRTT, maxRTT time.Duration, ok bool) {
	var sum time.Duration
	n := 0
	for _, e := range r.Replies {
		if e.Err != nil {
			continue
		}
		if n == 0 || e.RTT < minRTT {
			minRTT = e.RTT
		}
		if e.RTT > maxRTT {
			maxRTT = e.RTT
		}
		sum += e.RTT
		n++
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return minRTT, sum / time.Duration(n), maxRTT, true
}

// Describe renders an echo error the way it is shown to the user.
func (r PingReport) Describe(err error) string {
	return describePingError(err, r.Timeout)
}

// Outcome folds the report into a ProbeOutcome: the mean RTT when at least one
// echo was answered, otherwise the last observed error.
func (r PingReport) Outcome() domain.ProbeOutcome {
	if _, avg, _, ok := r.RTTStats(); ok {
		return domain.Reached(avg)
	}

	var last error
	for _, e := range r.Replies {
		if e.Err != nil {
			last = e.Err
		}
	}
	if last == nil {
		return domain.ProbeFailed(domain.FailureAllAttemptsFailed, "all pings failed")
	}
	kind := classifyPingError(last)
	if len(r.Replies) > 1 {
		kind = domain.FailureAllAttemptsFailed
	}
	return domain.ProbeFailed(kind, describePingError(last, r.Timeout))
}
