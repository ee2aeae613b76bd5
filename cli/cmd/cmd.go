package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/pkg"
	"github.com/ardnew/maillist/store"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	sourcesKey  struct{}
	evalOptsKey struct{}
	ioKey       struct{}
	ioStreams   struct {
		in  io.Reader
		out io.Writer
	}
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// SearchPathEnv names the environment variable listing extra directories
// searched for relative source files.
var SearchPathEnv = strings.ToUpper(pkg.Prefix()) + "_PATH"

// WithSources returns a new context.Context holding the sources preloaded
// into every evaluator built by a command. A source is a file, "-" for
// stdin, or a store URL.
func WithSources(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourcesKey{}, sources)
}

func sourcesFrom(ctx context.Context) []string {
	s, _ := ctx.Value(sourcesKey{}).([]string)

	return s
}

// WithEvaluatorOptions returns a new context.Context holding options applied
// to every evaluator built by a command.
func WithEvaluatorOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, evalOptsKey{},
		append(evalOptionsFrom(ctx), opts...))
}

func evalOptionsFrom(ctx context.Context) []lang.Option {
	o, _ := ctx.Value(evalOptsKey{}).([]lang.Option)

	return o
}

// WithIO returns a new context.Context whose commands read from in and write
// to out instead of the process streams.
func WithIO(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, ioStreams{in: in, out: out})
}

func inputFrom(ctx context.Context) io.Reader {
	if s, ok := ctx.Value(ioKey{}).(ioStreams); ok && s.in != nil {
		return s.in
	}

	return os.Stdin
}

func outputFrom(ctx context.Context) io.Writer {
	if s, ok := ctx.Value(ioKey{}).(ioStreams); ok && s.out != nil {
		return s.out
	}

	return os.Stdout
}

// newEvaluator builds an evaluator from the options in ctx and preloads the
// sources in ctx followed by extra.
func newEvaluator(
	ctx context.Context,
	extra []string,
	opts ...lang.Option,
) (*lang.Evaluator, error) {
	opts = append(
		append([]lang.Option{lang.WithLogger(log.Default())}, evalOptionsFrom(ctx)...),
		opts...,
	)

	e := lang.NewEvaluator(opts...)

	sources := append(append([]string{}, sourcesFrom(ctx)...), extra...)
	if err := loadSources(ctx, e, sources); err != nil {
		return nil, err
	}

	return e, nil
}

// loadSources loads each source into e in order. A file reached more than
// once, through symlinks or different relative paths, is loaded only the
// first time, as is stdin.
func loadSources(ctx context.Context, e *lang.Evaluator, sources []string) error {
	seen := make(map[fileKey]struct{})
	stdin := false

	for _, src := range sources {
		var err error

		switch {
		case src == stdinSource:
			if stdin {
				continue
			}

			stdin = true
			err = e.Load(ctx, inputFrom(ctx))

		case isStoreURL(src):
			err = restore(ctx, e, src)

		default:
			err = loadFile(ctx, e, src, seen)
		}

		if err != nil {
			return ErrLoadSource.With(slog.String("source", src)).Wrap(err)
		}
	}

	return nil
}

func isStoreURL(src string) bool {
	return strings.HasPrefix(src, "redis://") || strings.HasPrefix(src, "rediss://")
}

func restore(ctx context.Context, e *lang.Evaluator, target string) error {
	st, err := store.Open(ctx, target)
	if err != nil {
		return err
	}
	defer st.Close()

	return store.Restore(ctx, st, e)
}

func loadFile(
	ctx context.Context,
	e *lang.Evaluator,
	src string,
	seen map[fileKey]struct{},
) error {
	path, err := resolveSource(src)
	if err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				log.DebugContext(ctx, "skip duplicate source", slog.String("path", path))

				return nil
			}

			seen[key] = struct{}{}
		}
	}

	return store.Restore(ctx, store.NewFile(path), e)
}

// searchPath returns the directories searched for relative sources: the
// configuration directory followed by the entries of [SearchPathEnv].
func searchPath() []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(SearchPathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(pkg.ConfigDir()),
	).String()

	return filepath.SplitList(list)
}

// resolveSource returns the path of the file named by src. Paths that exist
// as given are used directly; relative paths are otherwise looked up in
// each directory of [searchPath].
func resolveSource(src string) (string, error) {
	src = strings.TrimPrefix(src, "file://")

	if isFile(src) {
		return src, nil
	}

	if !filepath.IsAbs(src) {
		for _, dir := range searchPath() {
			if dir == "" {
				continue
			}

			if path := filepath.Join(dir, src); isFile(path) {
				return path, nil
			}
		}
	}

	return "", ErrSourceNotFound.With(slog.String("source", src))
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// save persists the committed definitions of e to target.
func save(ctx context.Context, e *lang.Evaluator, target string) error {
	st, err := store.Open(ctx, target)
	if err != nil {
		return ErrSave.With(slog.String("target", target)).Wrap(err)
	}
	defer st.Close()

	if err := store.Persist(ctx, st, e); err != nil {
		return ErrSave.With(slog.String("target", target)).Wrap(err)
	}

	log.InfoContext(ctx, "registry saved",
		slog.String("target", target),
		slog.Int("lists", e.Registry().Len()),
	)

	return nil
}
