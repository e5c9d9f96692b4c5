package monitor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/sampler"
	"github.com/rileyhilliard/vu1/internal/transport"
)

// bytesPerMiB converts the network byte delta into the pushed value.
const bytesPerMiB = 1024 * 1024

// DefaultInterval is the pause between ticks when none is configured.
const DefaultInterval = 2 * time.Second

// ErrNoMetrics is returned by Run when no metric is enabled.
var ErrNoMetrics = stderrors.New("at least one dial must be set to update")

// Pusher sets a dial's value. *client.Client implements it.
type Pusher interface {
	SetValue(ctx context.Context, role dial.Role, value int) error
}

// Detector reports which roles have a dial. *dial.Registry implements it.
type Detector interface {
	Check(role dial.Role) bool
}

// Recorder observes loop activity. The metrics exporter implements it.
type Recorder interface {
	ObserveTick()
	ObservePush(role dial.Role, value int, err error)
	ObserveSampleError(role dial.Role)
}

type noopRecorder struct{}

func (noopRecorder) ObserveTick()                      {}
func (noopRecorder) ObservePush(dial.Role, int, error) {}
func (noopRecorder) ObserveSampleError(dial.Role)      {}

// Options configures a Loop.
type Options struct {
	// Interval is the sleep between ticks.
	Interval time.Duration

	// Roles lists explicitly enabled metrics. Empty means auto-detect.
	Roles []dial.Role

	Logger   logger.Logger
	Recorder Recorder
}

// Loop samples host metrics and pushes them to dials.
type Loop struct {
	pusher   Pusher
	detector Detector
	host     sampler.HostSampler
	gpu      sampler.GPUSampler
	interval time.Duration
	explicit []dial.Role
	log      logger.Logger
	recorder Recorder

	netPrev     uint64
	netBaseline bool

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a loop. detector is consulted only when no roles are
// explicitly enabled.
func New(pusher Pusher, detector Detector, host sampler.HostSampler, gpu sampler.GPUSampler, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if gpu == nil {
		gpu = sampler.NoGPU{}
	}
	return &Loop{
		pusher:   pusher,
		detector: detector,
		host:     host,
		gpu:      gpu,
		interval: opts.Interval,
		explicit: opts.Roles,
		log:      opts.Logger,
		recorder: opts.Recorder,
		sleep:    sleepCtx,
	}
}

// Enabled returns the metrics the loop will update, in tick order.
func (l *Loop) Enabled() []dial.Role {
	want := make(map[dial.Role]bool, len(l.explicit))
	for _, r := range l.explicit {
		want[r] = true
	}

	var roles []dial.Role
	for _, r := range dial.Roles {
		if len(l.explicit) > 0 {
			if want[r] {
				roles = append(roles, r)
			}
			continue
		}
		if l.detector != nil && l.detector.Check(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// Run ticks until ctx is cancelled or a fatal error occurs.
func (l *Loop) Run(ctx context.Context) error {
	roles := l.Enabled()
	if len(roles) == 0 {
		l.log.Critical("at least one dial must be set to update")
		return errors.WrapWithCode(ErrNoMetrics, errors.ErrConfig,
			"No dials to update",
			"Pass --cpu, --gpu, --mem or --net, or name your dials to match the dials section of vu1.yaml")
	}

	l.log.Info("running VU1 monitor (%s every %s)", roleList(roles), l.interval)

	for {
		if err := l.Tick(ctx, roles); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		l.log.Debug("update successful")

		if err := l.sleep(ctx, l.interval); err != nil {
			l.log.Info("monitor stopped")
			return nil
		}
	}
}

// Tick samples and pushes each role in order. It returns an error only
// for conditions that must stop the loop.
func (l *Loop) Tick(ctx context.Context, roles []dial.Role) error {
	l.recorder.ObserveTick()

	for _, role := range roles {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		value, push, err := l.sample(ctx, role)
		if err != nil {
			l.log.Error("failed to sample %s: %v", role, err)
			l.recorder.ObserveSampleError(role)
			continue
		}
		if !push {
			continue
		}

		err = l.pusher.SetValue(ctx, role, value)
		l.recorder.ObservePush(role, value, err)
		if err == nil {
			l.log.Debug("%s dial set to %d", role, value)
			continue
		}

		switch {
		case stderrors.Is(err, dial.ErrDialNotImplemented):
			l.log.Critical("failed to update %s: dial not found", role)
			return errors.WrapWithCode(err, errors.ErrDial,
				"Dial "+role.String()+" disappeared",
				"Check the dial is still connected and named as in vu1.yaml, then restart the monitor")
		case stderrors.Is(err, transport.ErrServerUnreachable):
			l.log.Critical("VU1 server unreachable: %v", err)
			return errors.WrapWithCode(err, errors.ErrServer,
				"Lost connection to the VU1 server",
				"Check the VU1 server is running and server.hostname/server.port are correct")
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			l.log.Error("failed to update %s: %v", role, err)
		}
	}
	return nil
}

// sample reads the value for role. The bool is false when there is nothing
// to send yet (the first network reading).
func (l *Loop) sample(ctx context.Context, role dial.Role) (int, bool, error) {
	switch role {
	case dial.RoleCPU:
		pct, err := l.host.CPUPercent(ctx)
		if err != nil {
			return 0, false, err
		}
		return clamp(int(pct)), true, nil
	case dial.RoleGPU:
		pct, err := l.gpu.Utilisation(ctx)
		if err != nil {
			return 0, false, err
		}
		return clamp(int(pct)), true, nil
	case dial.RoleMemory:
		pct, err := l.host.MemoryPercent(ctx)
		if err != nil {
			return 0, false, err
		}
		return clamp(int(pct)), true, nil
	case dial.RoleNetwork:
		return l.sampleNetwork(ctx)
	}
	return 0, false, nil
}

// sampleNetwork returns whole MiB received since the last reading. The
// baseline moves forward on every reading after the first.
func (l *Loop) sampleNetwork(ctx context.Context) (int, bool, error) {
	now, err := l.host.BytesReceived(ctx)
	if err != nil {
		return 0, false, err
	}

	if !l.netBaseline {
		l.netPrev = now
		l.netBaseline = true
		return 0, false, nil
	}

	var delta uint64
	// Counters reset when an interface goes away; treat that as no traffic.
	if now > l.netPrev {
		delta = now - l.netPrev
	}
	l.netPrev = now
	return clamp(int(delta / bytesPerMiB)), true, nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func roleList(roles []dial.Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += r.String()
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
