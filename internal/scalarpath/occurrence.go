// Package scalarpath finds where values of custom scalar types appear in the
// result of a GraphQL operation.
//
// Discovery runs in two steps. Collect walks the document once and records
// every scalar-typed field and every fragment spread, with paths relative to
// the enclosing fragment definition or operation. Assemble then stitches
// fragment-relative paths onto each chain of spread sites leading to them, so
// a fragment spread in three places yields three absolute paths.
package scalarpath

import "strings"

// ScalarOccurrence is a field whose type unwraps to a registered scalar.
type ScalarOccurrence struct {
	TypeName string
	// Path of response keys from the enclosing scope to the field.
	Path []string
	// Fragment is the enclosing fragment definition, or "" for an operation body.
	Fragment string
}

// SpreadOccurrence is a `...Name` site.
type SpreadOccurrence struct {
	FragmentName string
	Path         []string
	Fragment     string
}

type Occurrences struct {
	Scalars []ScalarOccurrence
	Spreads []SpreadOccurrence
}

// ResolvedPath is an absolute path from the result root to scalar values of
// TypeName. Lists along the way are implicit: the path never holds indices.
type ResolvedPath struct {
	Path     []string
	TypeName string
}

func (p ResolvedPath) String() string { return strings.Join(p.Path, ".") }

type pathBuilder struct {
	stack []string
}

func newPathBuilder(capacity int) *pathBuilder {
	return &pathBuilder{stack: make([]string, 0, capacity)}
}

func (p *pathBuilder) push(segment string) { p.stack = append(p.stack, segment) }

func (p *pathBuilder) pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *pathBuilder) reset() { p.stack = p.stack[:0] }

func (p *pathBuilder) copy() []string {
	out := make([]string, len(p.stack))
	copy(out, p.stack)
	return out
}
