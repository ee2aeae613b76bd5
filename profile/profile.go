package profile

import "github.com/ardnew/maillist/pkg"

// Profiler holds the settings of a single profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option configures a [Profiler].
type Option = pkg.Option[Profiler]

// Make returns a [Profiler] with opts applied.
func Make(opts ...Option) Profiler {
	return pkg.Apply(Profiler{}, opts...)
}

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Start begins profiling. An empty or unsupported mode, or a build without
// the pprof tag, yields a no-op [Stopper]. Stop is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

type ignore struct{}

func (ignore) Stop() {}
