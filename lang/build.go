package lang

import "log/slog"

// Build converts a syntax tree into an expression.
//
// Definitions are registered with d in the order they appear, before the
// rest of the tree is built, and a definition's value is the expression of
// its right-hand side. A nil d builds definitions without registering them.
func Build(n *Node, d Definer) (Expr, error) {
	switch n.Kind {
	case KindEmpty:
		return Empty{}, nil

	case KindEmail:
		return Email{Address: Recipient(n.Text)}, nil

	case KindName:
		return NameRef{Name: n.Text}, nil

	case KindDefinition:
		if d != nil {
			if err := d.Define(n.Text, n.Body); err != nil {
				return nil, err
			}
		}

		return Build(n.Right, d)

	case KindUnion, KindIntersection, KindDifference, KindSequence:
		left, err := Build(n.Left, d)
		if err != nil {
			return nil, err
		}

		right, err := Build(n.Right, d)
		if err != nil {
			return nil, err
		}

		switch n.Kind {
		case KindUnion:
			return Union{left, right}, nil
		case KindIntersection:
			return Intersection{left, right}, nil
		case KindDifference:
			return Difference{left, right}, nil
		default:
			return Sequence{left, right}, nil
		}
	}

	return nil, ErrInternal.With(
		slog.String("kind", n.Kind.String()),
		slog.String("position", n.Pos.String()),
	)
}
