package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/metrics"
	"github.com/ardnew/maillist/server"
)

// Serve exposes the registry over HTTP until interrupted.
type Serve struct {
	Addr            string        `default:"${serveAddr}" help:"Listen address"                                       short:"a"`
	Save            string        `                       help:"Save the registry to a file or redis:// URL on shutdown" placeholder:"TARGET"`
	ShutdownTimeout time.Duration `default:"10s"          help:"Time allowed for in-flight requests on shutdown"`
	Metrics         bool          `default:"true"         help:"Serve Prometheus metrics at /metrics"                 negatable:""`
}

// Run executes the serve command.
func (s *Serve) Run(ctx context.Context) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		evalOpts []lang.Option
		srvOpts  = []server.Option{server.WithLogger(log.Default())}
	)

	if s.Metrics {
		m := metrics.New()
		evalOpts = append(evalOpts, lang.WithObserver(m))
		srvOpts = append(srvOpts, server.WithMetrics(m))
	}

	e, err := newEvaluator(ctx, nil, evalOpts...)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "serving",
		slog.String("addr", s.Addr),
		slog.Int("lists", e.Registry().Len()),
		slog.Bool("metrics", s.Metrics),
	)

	err = server.New(e, srvOpts...).Serve(ctx, s.Addr, s.ShutdownTimeout)
	if err != nil {
		return ErrServe.With(slog.String("addr", s.Addr)).Wrap(err)
	}

	if s.Save != "" {
		return save(context.WithoutCancel(ctx), e, s.Save)
	}

	return nil
}
