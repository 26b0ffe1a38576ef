package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/cxn/internal/domain"
	"github.com/hamed0406/cxn/internal/probe"
)

// MaxConcurrentChecks bounds the number of host probes in flight.
const MaxConcurrentChecks = 20

type Scheduler struct {
	Logger      *zap.Logger
	Resolver    probe.Resolver
	Pinger      probe.Pinger
	Timeout     time.Duration
	Parallel    bool
	Concurrency int
}

func NewScheduler(
	logger *zap.Logger,
	resolver probe.Resolver,
	pinger probe.Pinger,
	timeout time.Duration,
	parallel bool,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Scheduler{
		Logger:      logger,
		Resolver:    resolver,
		Pinger:      pinger,
		Timeout:     timeout,
		Parallel:    parallel,
		Concurrency: MaxConcurrentChecks,
	}
}

// Run checks every host once and returns one result per host, in input
// order, whatever order the probes finish in. Cancelling ctx does not
// interrupt probes already admitted.
func (s *Scheduler) Run(ctx context.Context, hosts []domain.HostSpec) []domain.HostResult {
	results := make([]domain.HostResult, len(hosts))
	if len(hosts) == 0 {
		return results
	}
	ctx = context.WithoutCancel(ctx)

	if !s.Parallel {
		for i, h := range hosts {
			results[i] = s.checkOne(ctx, h)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(s.limit())
	for i, h := range hosts {
		g.Go(func() error {
			// each unit owns slot i
			results[i] = s.checkOne(ctx, h)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Scheduler) limit() int {
	if s.Concurrency < 1 || s.Concurrency > MaxConcurrentChecks {
		return MaxConcurrentChecks
	}
	return s.Concurrency
}

// checkOne isolates a panicking probe so the rest of the batch completes.
func (s *Scheduler) checkOne(ctx context.Context, h domain.HostSpec) (res domain.HostResult) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("host_check_panic",
				zap.String("host", h.Name),
				zap.String("address", h.Address),
				zap.Any("panic", r),
			)
			res = internalFailure(h, fmt.Sprintf("internal error: %v", r))
		}
	}()

	res = probe.CheckHost(ctx, h, s.Resolver, s.Pinger, s.Timeout)
	s.Logger.Debug("host_checked",
		zap.String("host", h.Name),
		zap.String("address", h.Address),
		zap.Bool("ok", res.IsSuccess()),
	)
	return res
}

// internalFailure marks every requested check as failed.
func internalFailure(h domain.HostSpec, msg string) domain.HostResult {
	res := domain.HostResult{Name: h.Name, Address: h.Address}
	if h.ShouldResolveDNS() {
		dns := domain.ResolutionFailed(domain.FailureInternal, msg)
		res.Resolution = &dns
	}
	if h.WantPing || res.Resolution == nil {
		ping := domain.ProbeFailed(domain.FailureInternal, msg)
		res.Probe = &ping
	}
	return res
}
