package scheduler

import (
	"fmt"
	"strconv"
	"time"
)

// WatchFlag is the --watch[=N] command-line flag. A bare --watch enables watch
// mode with the interval taken from the environment or config; --watch=N sets
// it explicitly.
type WatchFlag struct {
	Enabled bool
	Seconds int // 0 when not given explicitly
}

func (w *WatchFlag) String() string {
	if w == nil || !w.Enabled {
		return ""
	}
	if w.Seconds > 0 {
		return strconv.Itoa(w.Seconds)
	}
	return "true"
}

func (w *WatchFlag) Set(v string) error {
	switch v {
	case "true", "":
		w.Enabled, w.Seconds = true, 0
		return nil
	case "false":
		w.Enabled, w.Seconds = false, 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("watch interval must be a positive number of seconds, got %q", v)
	}
	w.Enabled, w.Seconds = true, n
	return nil
}

// IsBoolFlag lets the flag package accept a bare --watch.
func (w *WatchFlag) IsBoolFlag() bool { return true }

// ResolveInterval picks the watch interval: explicit flag value, then the
// environment override, then the config default. ok is false when watch mode
// is off.
func ResolveInterval(w WatchFlag, env, configDefault time.Duration) (interval time.Duration, ok bool) {
	if !w.Enabled {
		return 0, false
	}
	switch {
	case w.Seconds > 0:
		return time.Duration(w.Seconds) * time.Second, true
	case env > 0:
		return env, true
	case configDefault > 0:
		return configDefault, true
	}
	return 0, false
}
