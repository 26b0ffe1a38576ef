package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/hamed0406/cxn/internal/domain"
)

// Textfile rewrites a Prometheus text-format file after every check cycle,
// for node_exporter's textfile collector.
type Textfile struct {
	logger   *zap.Logger
	path     string
	registry *prometheus.Registry

	hostUp        *prometheus.GaugeVec
	hostRTT       *prometheus.GaugeVec
	hostsChecked  prometheus.Gauge
	hostsOK       prometheus.Gauge
	checkDuration prometheus.Gauge
	checksTotal   *prometheus.CounterVec
}

func NewTextfile(logger *zap.Logger, path string) *Textfile {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Textfile{
		logger:   logger,
		path:     path,
		registry: reg,
		hostUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_host_up",
				Help: "Latest host status (1 if every enabled check passed, 0 otherwise)",
			},
			[]string{"host"},
		),
		hostRTT: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_host_rtt_seconds",
				Help: "Latest ICMP echo round-trip time",
			},
			[]string{"host"},
		),
		hostsChecked: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cxn_hosts_checked",
				Help: "Hosts with at least one enabled check in the latest cycle",
			},
		),
		hostsOK: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cxn_hosts_ok",
				Help: "Hosts that passed every enabled check in the latest cycle",
			},
		),
		checkDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cxn_check_duration_seconds",
				Help: "Wall time of the latest cycle",
			},
		),
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cxn_checks_total",
				Help: "Completed check cycles by outcome",
			},
			[]string{"result"},
		),
	}
}

func (t *Textfile) Path() string { return t.path }

func (t *Textfile) BeginCycle(time.Time, time.Duration) {}

// Present records the cycle and rewrites the file atomically.
func (t *Textfile) Present(results []domain.HostResult, tally domain.Tally, elapsed time.Duration) error {
	t.hostUp.Reset()
	t.hostRTT.Reset()
	for _, r := range results {
		if r.Resolution == nil && r.Probe == nil {
			continue
		}
		up := 0.0
		if r.IsSuccess() {
			up = 1.0
		}
		t.hostUp.WithLabelValues(r.Name).Set(up)
		if r.Probe != nil && r.Probe.RTT != nil {
			t.hostRTT.WithLabelValues(r.Name).Set(r.Probe.RTT.Seconds())
		}
	}

	t.hostsChecked.Set(float64(tally.Checked))
	t.hostsOK.Set(float64(tally.Succeeded))
	t.checkDuration.Set(elapsed.Seconds())
	outcome := "ok"
	if !tally.AllOK() {
		outcome = "failed"
	}
	t.checksTotal.WithLabelValues(outcome).Inc()

	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", t.path, err)
	}
	t.logger.Debug("metrics_written", zap.String("path", t.path))
	return nil
}
