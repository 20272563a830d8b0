package transform

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/scalarlink/internal/language"
	scalar "github.com/hanpama/scalarlink/internal/scalar"
	schema "github.com/hanpama/scalarlink/internal/schema"
)

// Serializer rewrites variable values into their wire form, driven by the
// declared input types.
type Serializer struct {
	idx *schema.Index
	reg scalar.Registry
}

func NewSerializer(idx *schema.Index, reg scalar.Registry) *Serializer {
	return &Serializer{idx: idx, reg: reg}
}

// Variables serializes every declared variable present in vars, replacing
// the entries of vars in place. Nested maps are rebuilt, never mutated.
func (s *Serializer) Variables(defs language.VariableDefinitionList, vars map[string]any) error {
	if len(vars) == 0 {
		return nil
	}
	for _, def := range defs {
		v, ok := vars[def.Variable]
		if !ok {
			continue
		}
		out, err := s.value(v, schema.TypeRefFromAST(def.Type), []string{def.Variable})
		if err != nil {
			return fmt.Errorf("variable $%s: %w", def.Variable, err)
		}
		vars[def.Variable] = out
	}
	return nil
}

// Value serializes a single value of type t.
func (s *Serializer) Value(v any, t *schema.TypeRef) (any, error) {
	return s.value(v, t, nil)
}

func (s *Serializer) value(v any, t *schema.TypeRef, path []string) (any, error) {
	if v == nil || t == nil {
		return v, nil
	}
	switch t.Kind {
	case schema.TypeRefKindNonNull:
		return s.value(v, t.OfType, path)
	case schema.TypeRefKindList:
		return s.list(v, t.OfType, path)
	}

	named := s.idx.Type(t.Named)
	switch {
	case named == nil:
		return v, nil
	case named.Kind == schema.TypeKindInputObject:
		return s.inputObject(v, named, path)
	case s.idx.IsLeafInput(named):
		sc, ok := s.reg.Lookup(named.Name)
		if !ok {
			return v, nil
		}
		out, err := sc.Serialize(v)
		if err != nil {
			return nil, &ScalarError{TypeName: named.Name, Path: path, Err: err}
		}
		return out, nil
	}
	return v, nil
}

// list accepts slices of any element type so callers can pass []time.Time
// and the like directly.
func (s *Serializer) list(v any, elem *schema.TypeRef, path []string) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v, nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		el, err := s.value(rv.Index(i).Interface(), elem, path)
		if err != nil {
			return nil, err
		}
		out[i] = el
	}
	return out, nil
}

// inputObject accepts any map with string keys, so map[string]time.Time and
// the like are serialized field by field.
func (s *Serializer) inputObject(v any, t *schema.Type, path []string) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		if m, ok = stringKeyed(v); !ok {
			return v, nil
		}
	}
	out := make(map[string]any, len(m))
	for k, fv := range m {
		ft := s.idx.InputFieldType(t, k)
		if ft == nil {
			out[k] = fv
			continue
		}
		r, err := s.value(fv, ft, append(path[:len(path):len(path)], k))
		if err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, nil
}

func stringKeyed(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}
