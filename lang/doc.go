// Package lang implements the mailing list expression language.
//
// An expression is set algebra over email recipients with named,
// mutually-referencing list definitions:
//
//	staff = alice@example.com, bob@example.com;
//	admins = carol@example.com;
//	everyone = staff, admins;
//	everyone ! admins
//
// # Grammar
//
// Informal EBNF, case-insensitive, whitespace insignificant:
//
//	sequence   ::= listDef (';' listDef)*
//	listDef    ::= definition | union
//	definition ::= name '=' union
//	union      ::= difference (',' difference)*
//	difference ::= intersect ('!' intersect)*
//	intersect  ::= primary ('*' primary)*
//	primary    ::= email | name | '(' sequence ')' | ε
//	name       ::= [a-z0-9_.-]+
//	email      ::= username '@' domain
//
// Precedence from highest to lowest is grouping, '*', '!', ',', '=' and ';'.
//
// # Evaluation
//
// [Evaluator.Evaluate] parses the input, registers each definition in the
// shared [Registry] and returns the recipients of the last statement. Names
// are bound late: a [NameRef] reads the current definition every time it is
// evaluated, and an undefined name is the empty list rather than an error.
//
// Redefining a list in terms of itself extends it:
//
//	a = x@y.com; a = a, z@y.com   // a is now x@y.com, z@y.com
//
// # Mail loops
//
// Before a definition is stored, the transitive dependencies of every list
// that reaches it are brought up to date. A list that would depend on itself is rejected with a
// *[MailLoopError] and the whole call leaves the registry unchanged.
//
// # Concurrency
//
// The registry has one lock, held for the whole of each Evaluate call, so
// concurrent callers never interleave a cycle check with a conflicting
// definition. Expressions and syntax trees are immutable.
package lang
