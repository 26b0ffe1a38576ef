package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hamed0406/cxn/internal/domain"
)

// Verbose prints every check of every host followed by a summary line.
type Verbose struct {
	Out   io.Writer
	Hosts int
}

func (v *Verbose) BeginCycle(time.Time, time.Duration) {
	fmt.Fprintf(v.Out, "Checking %d hosts...\n\n", v.Hosts)
}

func (v *Verbose) Present(results []domain.HostResult, tally domain.Tally, elapsed time.Duration) error {
	for _, r := range results {
		fmt.Fprintf(v.Out, "%s (%s)\n", cyan(r.Name), r.Address)
		if r.Resolution != nil {
			fmt.Fprintln(v.Out, resolutionLine(*r.Resolution))
		}
		if r.Probe != nil {
			fmt.Fprintln(v.Out, probeLine(*r.Probe))
		}
		fmt.Fprintln(v.Out)
	}
	fmt.Fprintln(v.Out, Summary(tally, elapsed))
	return nil
}

// Summary is the closing line of a verbose run.
func Summary(t domain.Tally, elapsed time.Duration) string {
	secs := elapsed.Seconds()
	if t.AllOK() {
		return fmt.Sprintf("Summary: %d/%d hosts %s in %.1fs", t.Succeeded, t.Checked, green("OK"), secs)
	}
	return fmt.Sprintf("Summary: %d/%d hosts OK, %d %s in %.1fs", t.Succeeded, t.Checked, t.Failed(), red("failed"), secs)
}

func resolutionLine(r domain.ResolutionOutcome) string {
	if !r.Succeeded {
		return fmt.Sprintf("  %s dns:  %s", red("✗"), orUnknown(r.Error))
	}
	addrs := "(none)"
	if len(r.Addresses) > 0 {
		parts := make([]string, len(r.Addresses))
		for i, a := range r.Addresses {
			parts[i] = a.String()
		}
		addrs = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("  %s dns:  %s", green("✓"), addrs)
}

func probeLine(p domain.ProbeOutcome) string {
	if !p.Succeeded {
		return fmt.Sprintf("  %s ping: %s", red("✗"), orUnknown(p.Error))
	}
	rtt := "?"
	if p.RTT != nil {
		rtt = millis(*p.RTT)
	}
	return fmt.Sprintf("  %s ping: %s", green("✓"), rtt)
}

func orUnknown(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	return msg
}
