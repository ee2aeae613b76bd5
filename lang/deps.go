package lang

import (
	"maps"
	"slices"
	"strings"
	"unicode"
)

// Dependencies returns the names referenced directly by the definition body
// of name, sorted and without duplicates. Addresses and the name itself are
// not dependencies.
func Dependencies(name, body string) []string {
	fields := strings.FieldsFunc(strings.ToLower(body), func(c rune) bool {
		return unicode.IsSpace(c) || strings.ContainsRune(",!*();=", c)
	})

	deps := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != name && !strings.ContainsRune(f, '@') {
			deps = append(deps, f)
		}
	}

	slices.Sort(deps)

	return slices.Clip(slices.Compact(deps))
}

// Closure computes the transitive dependencies of every name in direct,
// including names that are only referenced. It applies one round of
// relational composition per hop, at most once per distinct name, and fails
// with *[MailLoopError] as soon as a round leaves a name depending on itself.
// The result maps every name to a sorted slice.
func Closure(direct map[string][]string) (map[string][]string, error) {
	deps := make(map[string]map[string]struct{}, len(direct))

	node := func(name string) map[string]struct{} {
		s, ok := deps[name]
		if !ok {
			s = make(map[string]struct{})
			deps[name] = s
		}

		return s
	}

	for name, ds := range direct {
		s := node(name)
		for _, d := range ds {
			s[d] = struct{}{}
			node(d)
		}
	}

	names := slices.Sorted(maps.Keys(deps))

	for range len(names) {
		changed := false

		for _, name := range names {
			s := deps[name]
			for _, d := range slices.Collect(maps.Keys(s)) {
				for dd := range deps[d] {
					if _, ok := s[dd]; !ok {
						s[dd] = struct{}{}
						changed = true
					}
				}
			}
		}

		for _, name := range names {
			if _, ok := deps[name][name]; ok {
				return nil, &MailLoopError{Name: name, Cycle: cycle(mapDeps(direct), name)}
			}
		}

		if !changed {
			break
		}
	}

	out := make(map[string][]string, len(deps))
	for name, s := range deps {
		out[name] = slices.Sorted(maps.Keys(s))
	}

	return out, nil
}

// Extend returns closure updated for name now depending directly on deps.
// closure must be the transitive closure of the graph described by direct,
// which is consulted for every name except name itself. Only the entries of
// name and of the names that reach it are recomputed, and closure is not
// modified. If the new edges close a cycle, Extend fails with
// *[MailLoopError] naming name.
func Extend(
	closure map[string][]string,
	direct func(string) []string,
	name string,
	deps []string,
) (map[string][]string, error) {
	graph := func(n string) []string {
		if n == name {
			return deps
		}

		return direct(n)
	}

	// A path from d back to name never leaves name on the way, so it exists
	// in the old graph exactly when it exists in the new one.
	for _, d := range deps {
		if d == name || contains(closure[d], name) {
			return nil, &MailLoopError{Name: name, Cycle: cycle(graph, name)}
		}
	}

	stale := map[string]bool{name: true}
	for n, c := range closure {
		if contains(c, name) {
			stale[n] = true
		}
	}

	out := maps.Clone(closure)
	if out == nil {
		out = map[string][]string{}
	}

	done := make(map[string]bool, len(stale))

	var visit func(n string) []string

	visit = func(n string) []string {
		if !stale[n] || done[n] {
			return out[n]
		}

		s := map[string]struct{}{}
		for _, d := range graph(n) {
			s[d] = struct{}{}
			for _, dd := range visit(d) {
				s[dd] = struct{}{}
			}
		}

		out[n] = slices.Sorted(maps.Keys(s))
		done[n] = true

		return out[n]
	}

	for n := range stale {
		visit(n)
	}

	for _, d := range deps {
		if _, ok := out[d]; !ok {
			out[d] = []string{}
		}
	}

	return out, nil
}

// contains reports whether the sorted slice s holds name.
func contains(s []string, name string) bool {
	_, ok := slices.BinarySearch(s, name)

	return ok
}

func mapDeps(direct map[string][]string) func(string) []string {
	return func(name string) []string { return direct[name] }
}

// cycle returns a shortest path name -> ... -> name through direct, found
// breadth first.
func cycle(direct func(string) []string, name string) []string {
	prev := map[string]string{}
	queue := []string{name}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next := slices.Clone(direct(cur))
		slices.Sort(next)

		for _, d := range next {
			if d == name {
				path := []string{name}
				for at := cur; at != name; at = prev[at] {
					path = append(path, at)
				}

				path = append(path, name)
				slices.Reverse(path)

				return path
			}

			if _, seen := prev[d]; !seen {
				prev[d] = cur
				queue = append(queue, d)
			}
		}
	}

	return []string{name, name}
}
