package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/cxn/internal/config"
	"github.com/hamed0406/cxn/internal/logging"
	"github.com/hamed0406/cxn/internal/metrics"
	"github.com/hamed0406/cxn/internal/probe"
	"github.com/hamed0406/cxn/internal/report"
	"github.com/hamed0406/cxn/internal/scheduler"
)

type app struct {
	env    config.Env
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

func newApp(stdout, stderr io.Writer) (*app, error) {
	env, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return &app{env: env, stdout: stdout, stderr: stderr, logger: zap.NewNop()}, nil
}

func (a *app) close() { _ = a.logger.Sync() }

func (a *app) initLogger(verbose bool) error {
	level := a.env.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(a.env.LogDir, level)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) newResolver(cfg config.Config) (*probe.DNSResolver, error) {
	if len(cfg.Nameservers) > 0 {
		return probe.NewNameserverResolver(cfg.Nameservers, cfg.Timeout(), cfg.RetryCount, a.logger)
	}
	return probe.NewSystemResolver(cfg.Timeout(), cfg.RetryCount, a.logger), nil
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) configFlag(fs *flag.FlagSet, path *string) {
	fs.StringVar(path, "config", a.env.ConfigPath, "config file (default: ~/.config/cxn/cxn.yml, then ./cxn.yml)")
	fs.StringVar(path, "c", a.env.ConfigPath, "shorthand for -config")
}

// parseArgs allows flags before and after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func (a *app) fail(code int, err error) int {
	fmt.Fprintln(a.stderr, "error:", err)
	a.logger.Error("command_failed", zap.Error(err))
	return code
}

func (a *app) check(ctx context.Context, args []string) int {
	var (
		cfgPath     string
		metricsFile string
		sequential  bool
		verbose     bool
		watch       scheduler.WatchFlag
	)
	fs := a.flagSet("check")
	a.configFlag(fs, &cfgPath)
	fs.BoolVar(&sequential, "sequential", false, "check hosts one at a time")
	fs.BoolVar(&sequential, "s", false, "shorthand for -sequential")
	fs.Var(&watch, "watch", "repeat checks; -watch=N sets the interval in seconds, bare -watch uses CXN_WATCH_INTERVAL or the config interval")
	fs.BoolVar(&verbose, "verbose", false, "debug logging")
	fs.BoolVar(&verbose, "v", false, "shorthand for -verbose")
	fs.StringVar(&metricsFile, "metrics-file", a.env.MetricsFile, "write Prometheus metrics to this file after every check")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return parseExit(err)
	}
	if len(positional) > 0 {
		fmt.Fprintf(a.stderr, "check takes no arguments, got %q\n", positional)
		return exitUsage
	}

	if err := a.initLogger(verbose); err != nil {
		return a.fail(exitFailure, err)
	}
	cfg, err := config.Load(cfgPath, a.logger)
	if err != nil {
		return a.fail(exitUsage, err)
	}

	hosts := cfg.HostSpecs()
	if len(hosts) == 0 {
		report.NoHosts(a.stdout)
		return exitOK
	}

	resolver, err := a.newResolver(cfg)
	if err != nil {
		return a.fail(exitUsage, err)
	}
	pinger, err := probe.NewICMPPinger(a.env.Privileged, a.logger)
	if err != nil {
		return a.fail(exitFailure, err)
	}
	sched := scheduler.NewScheduler(a.logger, resolver, pinger, cfg.Timeout(), !sequential)

	var extra report.Multi
	if metricsFile != "" {
		extra = append(extra, metrics.NewTextfile(a.logger, metricsFile))
	}

	interval, watching := scheduler.ResolveInterval(watch, a.env.WatchIntervalDuration(), cfg.WatchInterval())
	if !watching {
		pres := append(report.Multi{&report.Verbose{Out: a.stdout, Hosts: len(hosts)}}, extra...)
		clock := scheduler.SystemClock
		tally := scheduler.RunCycle(ctx, a.logger, sched, pres, hosts, clock.Now(), 0, clock)
		if !tally.AllOK() {
			return exitFailure
		}
		return exitOK
	}

	pres := append(report.Multi{&report.Table{Out: a.stdout, Clear: true}}, extra...)
	w := scheduler.NewWatcher(a.logger, sched, pres, hosts, interval)
	if err := w.Run(ctx); err != nil {
		return a.fail(exitUsage, err)
	}
	report.Stopped(a.stdout)
	return exitOK
}

func (a *app) ping(ctx context.Context, args []string) int {
	var cfgPath string
	fs := a.flagSet("ping")
	a.configFlag(fs, &cfgPath)
	count := fs.Int("n", 4, "number of echo requests")
	timeoutMS := fs.Int("t", 1000, "timeout per echo in milliseconds")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return parseExit(err)
	}
	if len(positional) != 1 {
		fmt.Fprintln(a.stderr, "usage: cxn ping <host> [-n count] [-t timeout_ms]")
		return exitUsage
	}
	if *count < 1 || *timeoutMS < 1 {
		fmt.Fprintln(a.stderr, "count and timeout must be positive")
		return exitUsage
	}
	host := positional[0]

	if err := a.initLogger(false); err != nil {
		return a.fail(exitFailure, err)
	}
	cfg, err := config.Load(cfgPath, a.logger)
	if err != nil {
		return a.fail(exitUsage, err)
	}
	resolver, err := a.newResolver(cfg)
	if err != nil {
		return a.fail(exitUsage, err)
	}

	ip, lookup := probe.TargetFor(ctx, resolver, host)
	if !lookup.Succeeded {
		report.ResolveError(a.stderr, host, lookup)
		return exitFailure
	}

	pinger, err := probe.NewICMPPinger(a.env.Privileged, a.logger)
	if err != nil {
		return a.fail(exitFailure, err)
	}
	rep := pinger.Ping(ctx, ip, time.Duration(*timeoutMS)*time.Millisecond, *count)
	report.Ping(a.stdout, rep)

	a.logger.Info("ping_command_done",
		zap.String("host", host),
		zap.String("ip", ip.String()),
		zap.Int("sent", rep.Sent()),
		zap.Int("received", rep.Received()),
	)
	if rep.Received() == 0 {
		return exitFailure
	}
	return exitOK
}

func (a *app) dns(ctx context.Context, args []string) int {
	var cfgPath string
	fs := a.flagSet("dns")
	a.configFlag(fs, &cfgPath)
	ipv6 := fs.Bool("6", false, "include AAAA records")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return parseExit(err)
	}
	if len(positional) != 1 {
		fmt.Fprintln(a.stderr, "usage: cxn dns <hostname> [-6]")
		return exitUsage
	}
	host := positional[0]

	if err := a.initLogger(false); err != nil {
		return a.fail(exitFailure, err)
	}
	cfg, err := config.Load(cfgPath, a.logger)
	if err != nil {
		return a.fail(exitUsage, err)
	}
	resolver, err := a.newResolver(cfg)
	if err != nil {
		return a.fail(exitUsage, err)
	}

	out := resolver.Lookup(ctx, host, *ipv6)
	report.DNS(a.stdout, host, out, *ipv6)

	a.logger.Info("dns_command_done",
		zap.String("host", host),
		zap.Bool("ok", out.Succeeded),
		zap.Int("addresses", len(out.Addresses)),
	)
	if !out.Succeeded {
		return exitFailure
	}
	return exitOK
}
