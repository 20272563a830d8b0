// Package scalar defines the transform contract for custom GraphQL scalars and
// a handful of well-known implementations.
//
// A Scalar converts between the wire representation of a value (what a
// GraphQL server sends and accepts as JSON) and the domain representation the
// caller works with. ParseValue runs on values read from results; Serialize
// runs on values written into operation variables. Either direction may be
// partial and reject shapes it does not expect by returning an error.
package scalar

import (
	"sort"
	"strings"
)

// Scalar converts values of one custom scalar type.
type Scalar interface {
	// Serialize converts a domain value into its wire representation.
	Serialize(value any) (any, error)
	// ParseValue converts a wire value into its domain representation.
	ParseValue(value any) (any, error)
}

// Funcs adapts a pair of functions to Scalar. A nil function leaves values
// unchanged in that direction.
type Funcs struct {
	SerializeFunc  func(any) (any, error)
	ParseValueFunc func(any) (any, error)
}

func (f Funcs) Serialize(value any) (any, error) {
	if f.SerializeFunc == nil {
		return value, nil
	}
	return f.SerializeFunc(value)
}

func (f Funcs) ParseValue(value any) (any, error) {
	if f.ParseValueFunc == nil {
		return value, nil
	}
	return f.ParseValueFunc(value)
}

// Registry maps scalar type names to their transforms. Types that are not
// registered are left as the transport produced them.
type Registry map[string]Scalar

// Lookup returns the scalar registered under name.
func (r Registry) Lookup(name string) (Scalar, bool) {
	s, ok := r[name]
	return s, ok && s != nil
}

// Has reports whether name has a transform.
func (r Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered type names in lexical order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new registry holding r's entries overridden by others'.
func (r Registry) Merge(others ...Registry) Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Select returns the subset of r named in a comma separated list. Unknown
// names are reported in missing.
func (r Registry) Select(list string) (selected Registry, missing []string) {
	selected = Registry{}
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s, ok := r.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		selected[name] = s
	}
	return selected, missing
}
