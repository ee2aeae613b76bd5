package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies the variant of a syntax tree [Node].
type Kind int

const (
	KindEmpty Kind = iota
	KindEmail
	KindName
	KindUnion
	KindIntersection
	KindDifference
	KindSequence
	KindDefinition
)

var kindNames = [...]string{
	KindEmpty:        "empty",
	KindEmail:        "email",
	KindName:         "name",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindDifference:   "difference",
	KindSequence:     "sequence",
	KindDefinition:   "definition",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Node is a syntax tree node. Trees returned by [Parse] are shared through
// the parse cache and must not be modified.
type Node struct {
	Kind Kind
	Text string // Email: address; Name and Definition: list name
	Body string // Definition: right-hand side source text, lowercased

	// Binary operands. A Definition keeps its right-hand side in Right.
	Left  *Node
	Right *Node

	Pos Position
}

// Parse parses src as a sequence of definitions and unions:
//
//	sequence   ::= listDef (';' listDef)*
//	listDef    ::= definition | union
//	definition ::= name '=' union
//	union      ::= difference (',' difference)*
//	difference ::= intersect ('!' intersect)*
//	intersect  ::= primary ('*' primary)*
//	primary    ::= email | name | '(' sequence ')' | ε
//
// Names and addresses are case-insensitive and returned lowercased.
// Failures are reported as *[SyntaxError].
func Parse(src string) (*Node, error) {
	p := &parser{src: src, line: 1, col: 1}

	n, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, p.unexpected()
	}

	return n, nil
}

// parser holds the parser state.
type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) parseSequence() (*Node, error) {
	first, err := p.parseListDef()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if p.peek() != ';' {
		return first, nil
	}

	pos := p.position()
	p.advance()

	rest, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	return &Node{Kind: KindSequence, Left: first, Right: rest, Pos: pos}, nil
}

// parseListDef parses a definition if the input starts with a name followed
// by '=', and a union otherwise.
func (p *parser) parseListDef() (*Node, error) {
	p.skipSpace()

	saved := *p
	pos := p.position()
	word := p.scanWord()

	p.skipSpace()

	if word == "" || strings.ContainsRune(word, '@') || p.peek() != '=' {
		*p = saved

		return p.parseUnion()
	}

	name := strings.ToLower(word)
	if !ValidName(name) {
		return nil, p.syntaxError(pos, word, "invalid list name")
	}

	p.advance() // '='

	start := p.pos

	rhs, err := p.parseUnion()
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:  KindDefinition,
		Text:  name,
		Body:  strings.ToLower(strings.TrimSpace(p.src[start:p.pos])),
		Right: rhs,
		Pos:   pos,
	}, nil
}

func (p *parser) parseUnion() (*Node, error) {
	return p.parseBinary(',', KindUnion, p.parseDifference)
}

func (p *parser) parseDifference() (*Node, error) {
	return p.parseBinary('!', KindDifference, p.parseIntersect)
}

func (p *parser) parseIntersect() (*Node, error) {
	return p.parseBinary('*', KindIntersection, p.parsePrimary)
}

// parseBinary parses a left-associative chain of operands joined by op.
func (p *parser) parseBinary(
	op rune,
	kind Kind,
	operand func() (*Node, error),
) (*Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		p.skipSpace()

		if p.peek() != op {
			return left, nil
		}

		pos := p.position()
		p.advance()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Node{Kind: kind, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parsePrimary() (*Node, error) {
	p.skipSpace()

	pos := p.position()

	switch c := p.peek(); {
	case c == '(':
		p.advance()

		n, err := p.parseSequence()
		if err != nil {
			return nil, err
		}

		p.skipSpace()

		if p.peek() != ')' {
			return nil, p.expected("')'")
		}

		p.advance()

		return n, nil

	case isWordChar(c):
		word := p.scanWord()

		if strings.ContainsRune(word, '@') {
			addr, err := ParseRecipient(word)
			if err != nil {
				return nil, p.syntaxError(pos, word, "invalid address")
			}

			return &Node{Kind: KindEmail, Text: string(addr), Pos: pos}, nil
		}

		name := strings.ToLower(word)
		if !ValidName(name) {
			return nil, p.syntaxError(pos, word, "invalid list name")
		}

		return &Node{Kind: KindName, Text: name, Pos: pos}, nil

	default:
		return &Node{Kind: KindEmpty, Pos: pos}, nil
	}
}

// scanWord consumes a maximal run of word characters.
func (p *parser) scanWord() string {
	start := p.pos
	for !p.eof() && isWordChar(p.peek()) {
		p.advance()
	}

	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) peek() rune {
	if p.eof() {
		return utf8.RuneError
	}

	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.src[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *parser) syntaxError(pos Position, fragment, reason string) *SyntaxError {
	return &SyntaxError{
		Position: pos,
		Fragment: fragment,
		Reason:   reason,
		Source:   p.src,
	}
}

// unexpected reports the token at the current position.
func (p *parser) unexpected() *SyntaxError {
	pos := p.position()

	if isWordChar(p.peek()) {
		return p.syntaxError(pos, p.scanWord(), "unexpected")
	}

	_, size := utf8.DecodeRuneInString(p.src[p.pos:])

	return p.syntaxError(pos, p.src[p.pos:p.pos+size], "unexpected")
}

func (p *parser) expected(what string) *SyntaxError {
	if p.eof() {
		return p.syntaxError(p.position(), "", "expected "+what)
	}

	e := p.unexpected()
	e.Reason = "expected " + what + ", found"

	return e
}
