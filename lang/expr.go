package lang

import "strings"

// Resolver resolves list names during evaluation. Resolve returns the
// current expression bound to name (Empty if undefined) and the resolver to
// use while evaluating it.
type Resolver interface {
	Resolve(name string) (Expr, Resolver, error)
}

// Expr is an immutable set expression over recipients.
//
// The variants are [Empty], [Email], [Union], [Intersection], [Difference],
// [Sequence] and [NameRef]; the set is closed.
type Expr interface {
	// Recipients computes the recipient set, resolving names through r.
	Recipients(r Resolver) (Set, error)
	// String renders the expression in source form.
	String() string

	expr()
}

type (
	// Empty is the empty recipient set.
	Empty struct{}

	// Email is a single recipient.
	Email struct{ Address Recipient }

	// Union is the set of recipients in Left or Right.
	Union struct{ Left, Right Expr }

	// Intersection is the set of recipients in both Left and Right.
	Intersection struct{ Left, Right Expr }

	// Difference is the set of recipients in Left but not in Right.
	Difference struct{ Left, Right Expr }

	// Sequence evaluates Left for its effects, then yields Right.
	Sequence struct{ Left, Right Expr }

	// NameRef is the current definition of a named list.
	NameRef struct{ Name string }
)

func (Empty) expr()        {}
func (Email) expr()        {}
func (Union) expr()        {}
func (Intersection) expr() {}
func (Difference) expr()   {}
func (Sequence) expr()     {}
func (NameRef) expr()      {}

func (Empty) Recipients(Resolver) (Set, error) { return Set{}, nil }

func (e Email) Recipients(Resolver) (Set, error) { return NewSet(e.Address), nil }

func (e Union) Recipients(r Resolver) (Set, error) {
	return binary(e.Left, e.Right, r, Set.Union)
}

func (e Intersection) Recipients(r Resolver) (Set, error) {
	return binary(e.Left, e.Right, r, Set.Intersect)
}

func (e Difference) Recipients(r Resolver) (Set, error) {
	return binary(e.Left, e.Right, r, Set.Difference)
}

func (e Sequence) Recipients(r Resolver) (Set, error) {
	if _, err := e.Left.Recipients(r); err != nil {
		return Set{}, err
	}

	return e.Right.Recipients(r)
}

func (e NameRef) Recipients(r Resolver) (Set, error) {
	x, next, err := r.Resolve(e.Name)
	if err != nil {
		return Set{}, err
	}

	return x.Recipients(next)
}

func binary(left, right Expr, r Resolver, op func(Set, Set) Set) (Set, error) {
	a, err := left.Recipients(r)
	if err != nil {
		return Set{}, err
	}

	b, err := right.Recipients(r)
	if err != nil {
		return Set{}, err
	}

	return op(a, b), nil
}

// Render evaluates e and returns its recipients sorted and joined by ", ".
func Render(e Expr, r Resolver) (string, error) {
	s, err := e.Recipients(r)
	if err != nil {
		return "", err
	}

	return s.String(), nil
}

// Equal reports whether a and b denote the same recipient set under r.
// Structurally different expressions are equal if their sets are, so
// "x, y" equals "y, x".
func Equal(a, b Expr, r Resolver) (bool, error) {
	sa, err := a.Recipients(r)
	if err != nil {
		return false, err
	}

	sb, err := b.Recipients(r)
	if err != nil {
		return false, err
	}

	return sa.Equal(sb), nil
}

// Binding strength of each variant when rendered.
const (
	precSequence = iota + 1
	precUnion
	precDifference
	precIntersection
	precAtom
)

func precedence(e Expr) int {
	switch e.(type) {
	case Sequence:
		return precSequence
	case Union:
		return precUnion
	case Difference:
		return precDifference
	case Intersection:
		return precIntersection
	default:
		return precAtom
	}
}

func (Empty) String() string { return "" }

func (e Email) String() string { return string(e.Address) }

func (e NameRef) String() string { return e.Name }

func (e Union) String() string {
	return render(e.Left, e.Right, ", ", precUnion, false)
}

func (e Intersection) String() string {
	return render(e.Left, e.Right, " * ", precIntersection, false)
}

func (e Difference) String() string {
	return render(e.Left, e.Right, " ! ", precDifference, false)
}

func (e Sequence) String() string {
	return render(e.Left, e.Right, "; ", precSequence, true)
}

// render joins the operands of a binary expression, parenthesizing any
// operand that would otherwise bind differently when parsed back. Sequences
// nest to the right; all other operators nest to the left.
func render(left, right Expr, op string, prec int, rightAssoc bool) string {
	var b strings.Builder

	lp, rp := precedence(left), precedence(right)

	wrapL := lp < prec || (rightAssoc && lp == prec)
	wrapR := rp < prec || (!rightAssoc && rp == prec)

	write := func(e Expr, wrap bool) {
		if wrap {
			b.WriteString("(" + e.String() + ")")
		} else {
			b.WriteString(e.String())
		}
	}

	write(left, wrapL)
	b.WriteString(op)
	write(right, wrapR)

	return strings.TrimSpace(b.String())
}
