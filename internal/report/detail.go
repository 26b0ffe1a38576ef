package report

import (
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/hamed0406/cxn/internal/domain"
	"github.com/hamed0406/cxn/internal/probe"
)

// Ping prints a ping(8)-style transcript of rep.
func Ping(w io.Writer, rep probe.PingReport) {
	fmt.Fprintf(w, "PING %s\n", rep.Address)
	for _, e := range rep.Replies {
		if e.Err != nil {
			fmt.Fprintf(w, "  seq=%d: %s\n", e.Seq, red(rep.Describe(e.Err)))
			continue
		}
		fmt.Fprintf(w, "  64 bytes: seq=%d time=%s\n", e.Seq, millis(e.RTT))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "--- %s ping statistics ---\n", rep.Address)
	fmt.Fprintf(w, "%d packets transmitted, %d received, %.0f%% packet loss\n", rep.Sent(), rep.Received(), rep.Loss())
	if minRTT, avg, maxRTT, ok := rep.RTTStats(); ok {
		fmt.Fprintf(w, "rtt min/avg/max = %.1f/%.1f/%.1f ms\n", ms(minRTT), ms(avg), ms(maxRTT))
	}
}

// DNS prints the A (and with includeIPv6 the AAAA) records of a lookup.
func DNS(w io.Writer, hostname string, out domain.ResolutionOutcome, includeIPv6 bool) {
	fmt.Fprintln(w, hostname)
	if !out.Succeeded {
		fmt.Fprintf(w, "  %s: %s\n", red("Error"), orUnknown(out.Error))
		return
	}

	var v4, v6 []netip.Addr
	for _, a := range out.Addresses {
		if a.Is4() {
			v4 = append(v4, a)
		} else {
			v6 = append(v6, a)
		}
	}
	family(w, "A:    ", v4)
	if includeIPv6 {
		family(w, "AAAA: ", v6)
	}
}

// ResolveError is printed when the ping subcommand cannot resolve its target.
func ResolveError(w io.Writer, host string, out domain.ResolutionOutcome) {
	msg := out.Error
	if msg == "" {
		msg = "DNS resolution failed"
	}
	fmt.Fprintf(w, "%s: %s - %s\n", red("Error"), host, msg)
}

func family(w io.Writer, label string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		fmt.Fprintf(w, "  %s%s\n", label, dim("(none)"))
		return
	}
	for i, a := range addrs {
		if i == 0 {
			fmt.Fprintf(w, "  %s%s\n", label, a)
			continue
		}
		fmt.Fprintf(w, "        %s\n", a)
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
