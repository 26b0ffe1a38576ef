// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hamed0406/cxn/internal/config"
	"github.com/hamed0406/cxn/internal/logging"
	"github.com/hamed0406/cxn/internal/probe"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	env, err := config.FromEnv()
	if err != nil {
		fail(err.Error())
	}

	cfg, err := config.Load(env.ConfigPath, nil)
	if err != nil {
		fail(err.Error())
	}
	if cfg.Source == "" {
		warn("no config file found; built-in defaults will be used (" + config.PrimaryPath() + " or ./" + config.FallbackPath() + ")")
	} else {
		ok("config " + cfg.Source)
	}

	specs := cfg.HostSpecs()
	if len(specs) == 0 {
		warn("no hosts configured; cxn check will have nothing to do.")
	} else {
		idle := 0
		for _, h := range specs {
			if !h.HasChecks() {
				idle++
			}
		}
		ok(fmt.Sprintf("%d hosts configured", len(specs)))
		if idle > 0 {
			warn(fmt.Sprintf("%d hosts have neither ping nor dns enabled and will be skipped", idle))
		}
	}

	if len(cfg.Nameservers) > 0 {
		if _, err := probe.NewNameserverResolver(cfg.Nameservers, cfg.Timeout(), cfg.RetryCount, nil); err != nil {
			fail("nameservers: " + err.Error())
		}
		ok(fmt.Sprintf("nameservers %v", cfg.Nameservers))
	}

	mode := "unprivileged"
	if env.Privileged {
		mode = "privileged"
	}
	if _, err := probe.NewICMPPinger(env.Privileged, nil); err != nil {
		fail(mode + " ICMP socket: " + err.Error() + " (check net.ipv4.ping_group_range, or set CXN_PRIVILEGED=true with cap_net_raw)")
	}
	ok(mode + " ICMP socket opens")

	logDir := env.LogDir
	if logDir == "" {
		logDir = logging.DefaultDir()
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fail("log dir " + logDir + ": " + err.Error())
	}
	probeFile, err := os.CreateTemp(logDir, ".preflight-*")
	if err != nil {
		fail("log dir " + logDir + " is not writable: " + err.Error())
	}
	_ = probeFile.Close()
	_ = os.Remove(probeFile.Name())
	ok("log dir " + filepath.Clean(logDir) + " writable")

	if env.MetricsFile != "" {
		dir := filepath.Dir(env.MetricsFile)
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			warn("CXN_METRICS_FILE directory " + dir + " does not exist; metrics writes will fail")
		} else {
			ok("metrics file " + env.MetricsFile)
		}
	}

	ok("preflight passed")
}
