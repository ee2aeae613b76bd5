package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/klauspost/readahead"

	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/pkg"
)

// Outcome classifies the result of an evaluation for observers.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeSyntaxError Outcome = "syntax_error"
	OutcomeMailLoop    Outcome = "mail_loop"
	OutcomeError       Outcome = "error"
)

// OutcomeOf classifies err.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrSyntax):
		return OutcomeSyntaxError
	case errors.Is(err, ErrMailLoop):
		return OutcomeMailLoop
	default:
		return OutcomeError
	}
}

// Observer is notified after every call to [Evaluator.Evaluate].
type Observer interface {
	ObserveEvaluation(outcome Outcome, elapsed time.Duration, lists int)
}

// Evaluator evaluates list expressions against a shared [Registry].
// It is safe for concurrent use.
type Evaluator struct {
	registry *Registry
	logger   log.Logger
	maxDepth int
	observer Observer
}

// Option configures an [Evaluator].
type Option = pkg.Option[Evaluator]

// WithRegistry evaluates against r instead of a new registry.
func WithRegistry(r *Registry) Option {
	return func(e Evaluator) Evaluator {
		e.registry = r

		return e
	}
}

// WithLogger sets the logger used for evaluation tracing.
func WithLogger(l log.Logger) Option {
	return func(e Evaluator) Evaluator {
		e.logger = l

		return e
	}
}

// WithMaxDepth sets the limit on nested name resolution. Values below 1
// select the default, one more than the number of lists visible to the
// evaluation, which no acyclic registry can exceed.
func WithMaxDepth(depth int) Option {
	return func(e Evaluator) Evaluator {
		e.maxDepth = max(depth, 0)

		return e
	}
}

// WithObserver reports every evaluation to o.
func WithObserver(o Observer) Option {
	return func(e Evaluator) Evaluator {
		e.observer = o

		return e
	}
}

// NewEvaluator returns an Evaluator with opts applied.
func NewEvaluator(opts ...Option) *Evaluator {
	e := pkg.Apply(Evaluator{}, opts...)

	if e.registry == nil {
		e.registry = NewRegistry()
	}

	return &e
}

// Registry returns the registry the evaluator reads and writes.
func (e *Evaluator) Registry() *Registry { return e.registry }

// Evaluate parses input as a sequence of statements, registers its
// definitions and returns the recipients of the last statement.
//
// The call is atomic: if it fails with a *[SyntaxError], a *[MailLoopError]
// or any other error, none of its definitions are kept.
func (e *Evaluator) Evaluate(ctx context.Context, input string) (Set, error) {
	return e.EvaluateWhere(ctx, input, nil)
}

// EvaluateWhere is like [Evaluator.Evaluate] but keeps only the recipients
// accepted by f. The filter runs inside the same transaction, so if it fails
// the definitions made by input are discarded too. A nil f keeps everything.
func (e *Evaluator) EvaluateWhere(ctx context.Context, input string, f *Filter) (Set, error) {
	start := time.Now()

	set, err := e.evaluate(ctx, input, f)

	if e.observer != nil {
		e.observer.ObserveEvaluation(OutcomeOf(err), time.Since(start), e.registry.Len())
	}

	if err != nil {
		e.logger.DebugContext(ctx, "evaluate failed",
			slog.String("input", input),
			slog.Any("error", err),
		)

		return Set{}, err
	}

	e.logger.DebugContext(ctx, "evaluate",
		slog.String("input", input),
		slog.Int("recipients", set.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return set, nil
}

func (e *Evaluator) evaluate(ctx context.Context, input string, f *Filter) (Set, error) {
	node, err := parseCached(input)
	if err != nil {
		return Set{}, err
	}

	var set Set

	err = e.registry.Transaction(func(t *Txn) error {
		x, err := Build(node, e.tracing(ctx, t))
		if err != nil {
			return err
		}

		if set, err = x.Recipients(e.resolver(ctx, t)); err != nil {
			return err
		}

		set, err = f.Apply(set)

		return err
	})

	return set, err
}

// Expand returns the recipients of the named list as currently committed.
// An undefined name expands to the empty set.
func (e *Evaluator) Expand(ctx context.Context, name string) (Set, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !ValidName(name) {
		return Set{}, ErrInvalidName.With(slog.String("name", name))
	}

	return NameRef{Name: name}.Recipients(e.resolver(ctx, e.registry.View()))
}

// Load reads persisted definitions from r and defines them, in order, in a
// single transaction. Every statement must be a definition. Bodies are
// stored as written: definitions nested inside them are not registered
// again, so a later top-level definition of the same name keeps its value.
func (e *Evaluator) Load(ctx context.Context, r io.Reader) error {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return ErrReadInput.Wrap(err)
	}

	defs, err := definitions(string(data))
	if err != nil {
		return err
	}

	err = e.registry.Transaction(func(t *Txn) error {
		d := e.tracing(ctx, t)
		for _, n := range defs {
			if err := d.Define(n.Text, n.Body); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "registry loaded",
		slog.Int("bytes", len(data)),
		slog.Int("definitions", len(defs)),
		slog.Int("lists", e.registry.Len()),
	)

	return nil
}

// definitions returns the top-level definitions of src in order, skipping
// empty statements.
func definitions(src string) ([]*Node, error) {
	node, err := parseCached(src)
	if err != nil {
		return nil, err
	}

	var defs []*Node

	for node != nil {
		stmt := node
		if node.Kind == KindSequence {
			stmt, node = node.Left, node.Right
		} else {
			node = nil
		}

		switch stmt.Kind {
		case KindEmpty:
		case KindDefinition:
			defs = append(defs, stmt)
		default:
			frag := src[stmt.Pos.Offset:]
			if i := strings.IndexAny(frag, ";\n"); i >= 0 {
				frag = frag[:i]
			}

			return nil, &SyntaxError{
				Position: stmt.Pos,
				Fragment: strings.TrimSpace(frag),
				Reason:   "expected definition, found",
				Source:   src,
			}
		}
	}

	return defs, nil
}

// Save writes the committed definitions to w in the format read by
// [Evaluator.Load].
func (e *Evaluator) Save(ctx context.Context, w io.Writer) error {
	snap := e.registry.Snapshot()

	if err := snap.WriteText(w); err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "registry saved", slog.Int("lists", len(snap)))

	return nil
}

func (e *Evaluator) resolver(ctx context.Context, l Lookuper) Resolver {
	limit := e.maxDepth
	if limit == 0 {
		limit = math.MaxInt
		if c, ok := l.(counter); ok {
			limit = c.Len() + 1
		}
	}

	return resolver{ctx: ctx, lists: l, max: limit, logger: e.logger}
}

// counter is implemented by lookups that know how many lists they hold.
type counter interface {
	Len() int
}

func (e *Evaluator) tracing(ctx context.Context, d Definer) Definer {
	return tracingDefiner{ctx: ctx, d: d, logger: e.logger}
}

// resolver binds names late: every resolution reads the current body and
// builds a fresh expression from it.
type resolver struct {
	ctx    context.Context
	lists  Lookuper
	depth  int
	max    int
	logger log.Logger
}

func (r resolver) Resolve(name string) (Expr, Resolver, error) {
	if r.depth >= r.max {
		return nil, nil, ErrMaxDepthExceeded.With(
			slog.String("name", name),
			slog.Int("max_depth", r.max),
		)
	}

	next := r
	next.depth++

	body := r.lists.Lookup(name)
	if body == "" {
		r.logger.TraceContext(r.ctx, "resolve undefined", slog.String("name", name))

		return Empty{}, next, nil
	}

	node, err := parseCached(body)
	if err != nil {
		return nil, nil, ErrInternal.Wrap(err).With(slog.String("name", name))
	}

	// Nested definitions inside a stored body were registered when the
	// body was defined; resolution never registers again.
	x, err := Build(node, nil)
	if err != nil {
		return nil, nil, err
	}

	r.logger.TraceContext(r.ctx, "resolve",
		slog.String("name", name),
		slog.String("body", body),
		slog.Int("depth", next.depth),
	)

	return x, next, nil
}

type tracingDefiner struct {
	ctx    context.Context
	d      Definer
	logger log.Logger
}

func (t tracingDefiner) Define(name, body string) error {
	if err := t.d.Define(name, body); err != nil {
		return err
	}

	t.logger.TraceContext(t.ctx, "define",
		slog.String("name", name),
		slog.String("body", body),
	)

	return nil
}
