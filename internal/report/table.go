package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hamed0406/cxn/internal/domain"
)

const clearScreen = "\x1b[2J\x1b[1;1H"

// Table is the compact watch-mode view: one row per host under a timestamped
// header.
type Table struct {
	Out   io.Writer
	Clear bool // clear the terminal before each cycle
}

func (t *Table) BeginCycle(at time.Time, interval time.Duration) {
	if t.Clear {
		fmt.Fprint(t.Out, clearScreen)
	}
	fmt.Fprintf(t.Out, "%s [%s] (every %ds)\n\n", bold("cxn"), at.Format("15:04:05"), int(interval/time.Second))
}

type cell struct {
	text  string
	paint func(...interface{}) string
}

func (t *Table) Present(results []domain.HostResult, _ domain.Tally, _ time.Duration) error {
	rows := make([][3]cell, 0, len(results)+1)
	rows = append(rows, [3]cell{{"NAME", grey}, {"PING", grey}, {"DNS", grey}})
	for _, r := range results {
		name := cell{r.Name, fmt.Sprint}
		if !r.IsSuccess() {
			name.paint = red
		}
		rows = append(rows, [3]cell{name, pingCell(r.Probe), dnsCell(r.Resolution)})
	}

	var nameW, pingW int
	for _, row := range rows {
		nameW = max(nameW, utf8.RuneCountInString(row[0].text))
		pingW = max(pingW, utf8.RuneCountInString(row[1].text))
	}

	for _, row := range rows {
		name := row[0].text + strings.Repeat(" ", nameW-utf8.RuneCountInString(row[0].text))
		ping := strings.Repeat(" ", pingW-utf8.RuneCountInString(row[1].text)) + row[1].text
		line := fmt.Sprintf("%s  %s  %s", row[0].paint(name), row[1].paint(ping), row[2].paint(row[2].text))
		fmt.Fprintln(t.Out, strings.TrimRight(line, " "))
	}
	fmt.Fprintln(t.Out)
	return nil
}

func pingCell(p *domain.ProbeOutcome) cell {
	switch {
	case p == nil:
		return cell{"-", grey}
	case p.Succeeded && p.RTT != nil:
		return cell{millis(*p.RTT), green}
	case p.Succeeded:
		return cell{"ok", green}
	}
	return cell{"fail", red}
}

func dnsCell(r *domain.ResolutionOutcome) cell {
	switch {
	case r == nil:
		return cell{"-", grey}
	case r.Succeeded:
		addr, _ := r.First()
		if !addr.IsValid() {
			return cell{"", green}
		}
		return cell{addr.String(), green}
	}
	return cell{"fail", red}
}
