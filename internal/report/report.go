package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/multierr"

	"github.com/hamed0406/cxn/internal/domain"
)

type Presenter interface {
	BeginCycle(at time.Time, interval time.Duration)
	Present(results []domain.HostResult, tally domain.Tally, elapsed time.Duration) error
}

// Multi fans a cycle out to several presenters. Every presenter runs; the
// errors are combined.
type Multi []Presenter

func (m Multi) BeginCycle(at time.Time, interval time.Duration) {
	for _, p := range m {
		if p != nil {
			p.BeginCycle(at, interval)
		}
	}
}

func (m Multi) Present(results []domain.HostResult, tally domain.Tally, elapsed time.Duration) error {
	var errs error
	for _, p := range m {
		if p == nil {
			continue
		}
		errs = multierr.Append(errs, p.Present(results, tally, elapsed))
	}
	return errs
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	grey   = color.New(color.FgHiBlack).SprintFunc()
)

// NoHosts is printed instead of a cycle when the config has no hosts.
func NoHosts(w io.Writer) {
	fmt.Fprintln(w, yellow("No hosts configured"))
	fmt.Fprintln(w, "Add hosts to ~/.config/cxn/cxn.yml or ./cxn.yml to get started.")
}

// Stopped is printed when watch mode ends.
func Stopped(w io.Writer) {
	fmt.Fprintf(w, "\n\n%s\n", yellow("Watch mode stopped."))
}

// millis renders a duration as milliseconds with one decimal, e.g. 12.3ms.
func millis(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}
