package lang

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// entry is a stored definition.
type entry struct {
	body   string
	direct []string
}

// Registry maps list names to their definitions and dependency sets.
//
// All writes happen inside [Registry.Transaction], which holds the single
// registry lock for its whole duration and publishes its changes only if it
// succeeds. Committed maps are never modified again, so readers can keep
// using a view after the lock is released.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	closure map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]entry{},
		closure: map[string][]string{},
	}
}

// Definer registers list definitions.
type Definer interface {
	Define(name, body string) error
}

// Lookuper returns the stored body of a list, or "" if it is undefined.
type Lookuper interface {
	Lookup(name string) string
}

// Define stores body as the definition of name in its own transaction.
// See [Txn.Define].
func (r *Registry) Define(name, body string) error {
	return r.Transaction(func(t *Txn) error { return t.Define(name, body) })
}

// Lookup returns the body of name, or "" (the empty list) if name has never
// been defined.
func (r *Registry) Lookup(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.entries[name].body
}

// Len returns the number of defined lists.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Names returns the defined list names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.entries))
}

// Dependencies returns the names name depends on, directly or transitively.
func (r *Registry) Dependencies(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.closure[name])
}

// Snapshot returns an immutable copy of all definitions sorted by name.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(Snapshot, 0, len(r.entries))
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		snap = append(snap, Entry{
			Name:         name,
			Body:         r.entries[name].body,
			Dependencies: slices.Clone(r.closure[name]),
		})
	}

	return snap
}

// View returns a read-only view of the committed definitions.
func (r *Registry) View() Lookuper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return view(r.entries)
}

// Transaction runs fn with exclusive access to the registry. Definitions
// made through the [Txn] are visible to fn immediately and are committed
// only if fn returns nil.
func (r *Registry) Transaction(fn func(*Txn) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Txn{
		base:    r.entries,
		overlay: map[string]entry{},
		closure: r.closure,
	}

	if err := fn(t); err != nil {
		return err
	}

	if len(t.overlay) > 0 {
		entries := maps.Clone(r.entries)
		maps.Copy(entries, t.overlay)

		r.entries = entries
		r.closure = t.closure
	}

	return nil
}

type view map[string]entry

func (v view) Lookup(name string) string { return v[name].body }

func (v view) Len() int { return len(v) }

// Txn stages definitions on top of the committed registry state.
type Txn struct {
	base    map[string]entry
	overlay map[string]entry
	closure map[string][]string
}

// Lookup returns the body of name as seen by the transaction.
func (t *Txn) Lookup(name string) string {
	if e, ok := t.overlay[name]; ok {
		return e.body
	}

	return t.base[name].body
}

// Len returns the number of lists defined as seen by the transaction.
func (t *Txn) Len() int {
	n := len(t.base)
	for name := range t.overlay {
		if _, ok := t.base[name]; !ok {
			n++
		}
	}

	return n
}

func (t *Txn) direct(name string) []string {
	if e, ok := t.overlay[name]; ok {
		return e.direct
	}

	return t.base[name].direct
}

// Dependencies returns the transitive dependencies of name as seen by the
// transaction.
func (t *Txn) Dependencies(name string) []string {
	return slices.Clone(t.closure[name])
}

// Define stores body as the definition of name.
//
// Every free occurrence of name in body is first replaced with its previous
// definition in parentheses, so that "a = a, x@y.com" extends a. The result
// must parse, and the dependency graph including it must stay acyclic;
// otherwise Define returns a *[SyntaxError] or *[MailLoopError] and stages
// nothing.
//
// Define panics if name does not match the list name grammar.
func (t *Txn) Define(name, body string) error {
	if !ValidName(name) {
		panic(ErrInvalidName.With(slog.String("name", name)))
	}

	body = substitute(name, strings.ToLower(strings.TrimSpace(body)), t.Lookup(name))

	if _, err := parseCached(body); err != nil {
		return err
	}

	direct := Dependencies(name, body)

	closure, err := Extend(t.closure, t.direct, name, direct)
	if err != nil {
		return err
	}

	t.overlay[name] = entry{body: body, direct: direct}
	t.closure = closure

	return nil
}

// substitute replaces every occurrence of name in body that stands alone as
// a word, and is not itself the target of a nested definition, with the
// parenthesized prior body.
func substitute(name, body, prior string) string {
	var (
		b    strings.Builder
		repl = "(" + prior + ")"
		i    int
	)

	for i < len(body) {
		j := strings.Index(body[i:], name)
		if j < 0 {
			break
		}

		j += i
		end := j + len(name)

		b.WriteString(body[i:j])

		if isBoundary(body, j-1) && isBoundary(body, end) && !definedAt(body, end) {
			b.WriteString(repl)
		} else {
			b.WriteString(name)
		}

		i = end
	}

	b.WriteString(body[i:])

	return b.String()
}

func isBoundary(s string, i int) bool {
	return i < 0 || i >= len(s) || !isWordChar(rune(s[i]))
}

// definedAt reports whether the text at i is an '=' after optional spaces.
func definedAt(s string, i int) bool {
	rest := strings.TrimLeftFunc(s[i:], func(c rune) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r'
	})

	return strings.HasPrefix(rest, "=")
}

// Entry is one definition in a [Snapshot].
type Entry struct {
	Name         string   `json:"name"         yaml:"name"`
	Body         string   `json:"body"         yaml:"body"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// Snapshot is an immutable, name-ordered copy of a registry.
type Snapshot []Entry

// WriteText writes the snapshot as "name = body;" statements, one per line.
// The output is valid input for [Evaluator.Load].
func (s Snapshot) WriteText(w io.Writer) error {
	for _, e := range s {
		if _, err := io.WriteString(w, e.Name+" = "+e.Body+";\n"); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

// Text returns the snapshot as written by [Snapshot.WriteText].
func (s Snapshot) Text() string {
	var b strings.Builder

	_ = s.WriteText(&b)

	return b.String()
}
