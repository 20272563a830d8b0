// Package transform applies scalar conversions to operation results and
// variables without mutating the caller's values.
package transform

import (
	"maps"
	"strings"

	scalar "github.com/hanpama/scalarlink/internal/scalar"
	"github.com/hanpama/scalarlink/internal/scalarpath"
)

// LeafFunc converts one scalar value.
type LeafFunc func(value any) (any, error)

// Result runs ParseValue of the registered scalar at every path in data.
// Paths whose type is not registered are ignored. The same type and path
// pair is applied at most once, so a fragment spread twice at one site does
// not parse its values twice.
func Result(data any, paths []scalarpath.ResolvedPath, reg scalar.Registry) (any, error) {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		s, ok := reg.Lookup(p.TypeName)
		if !ok {
			continue
		}
		key := p.TypeName + "\x00" + strings.Join(p.Path, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out, err := ApplyPath(data, p.Path, s.ParseValue)
		if err != nil {
			return nil, &ScalarError{TypeName: p.TypeName, Path: p.Path, Err: err}
		}
		data = out
	}
	return data, nil
}

// ApplyPath returns data with fn applied to every value found at path.
//
// Lists met anywhere on the way fan out over their elements. A nil or
// missing value ends its branch, as does a non-object where an object was
// expected. Only maps and slices on a changed branch are copied; everything
// else in the returned tree is shared with data.
func ApplyPath(data any, path []string, fn LeafFunc) (any, error) {
	out, _, err := apply(data, path, fn)
	return out, err
}

func apply(node any, path []string, fn LeafFunc) (any, bool, error) {
	if len(path) == 0 {
		return leaf(node, fn)
	}
	switch n := node.(type) {
	case []any:
		return mapSlice(n, func(el any) (any, bool, error) { return apply(el, path, fn) })
	case map[string]any:
		child, ok := n[path[0]]
		if !ok || child == nil {
			return node, false, nil
		}
		v, changed, err := apply(child, path[1:], fn)
		if err != nil || !changed {
			return node, false, err
		}
		cp := maps.Clone(n)
		cp[path[0]] = v
		return cp, true, nil
	}
	return node, false, nil
}

func leaf(node any, fn LeafFunc) (any, bool, error) {
	switch n := node.(type) {
	case nil:
		return nil, false, nil
	case []any:
		return mapSlice(n, func(el any) (any, bool, error) { return leaf(el, fn) })
	}
	v, err := fn(node)
	if err != nil {
		return node, false, err
	}
	return v, true, nil
}

// mapSlice copies s on the first changed element. nil elements are kept.
func mapSlice(s []any, f func(any) (any, bool, error)) (any, bool, error) {
	var out []any
	for i, el := range s {
		if el == nil {
			continue
		}
		v, changed, err := f(el)
		if err != nil {
			return s, false, err
		}
		if !changed {
			continue
		}
		if out == nil {
			out = make([]any, len(s))
			copy(out, s)
		}
		out[i] = v
	}
	if out == nil {
		return s, false, nil
	}
	return out, true, nil
}
