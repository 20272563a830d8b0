package schema

import (
	language "github.com/hanpama/scalarlink/internal/language"
)

var typenameRef = NonNullType(NamedType("String"))

// Index is a read-only lookup surface over a Schema. It answers the three
// questions the scalar link asks while walking documents and variables:
// which type a field returns, which scalar (if any) an output type unwraps
// to, and which type an input object field expects.
type Index struct {
	schema      *Schema
	fields      map[string]map[string]*TypeRef
	inputFields map[string]map[string]*TypeRef
}

func NewIndex(s *Schema) *Index {
	idx := &Index{
		schema:      s,
		fields:      make(map[string]map[string]*TypeRef),
		inputFields: make(map[string]map[string]*TypeRef),
	}
	for name, t := range s.Types {
		switch {
		case len(t.Fields) > 0:
			m := make(map[string]*TypeRef, len(t.Fields))
			for _, f := range t.Fields {
				m[f.Name] = f.Type
			}
			idx.fields[name] = m
		case len(t.InputFields) > 0:
			m := make(map[string]*TypeRef, len(t.InputFields))
			for _, f := range t.InputFields {
				m[f.Name] = f.Type
			}
			idx.inputFields[name] = m
		}
	}
	return idx
}

func (x *Index) Schema() *Schema { return x.schema }

// Type returns the named type, or nil.
func (x *Index) Type(name string) *Type { return x.schema.Types[name] }

// RootType returns the root object type for an operation kind.
func (x *Index) RootType(op language.Operation) *Type {
	switch op {
	case language.Mutation:
		return x.schema.root(x.schema.MutationType)
	case language.Subscription:
		return x.schema.root(x.schema.SubscriptionType)
	default:
		return x.schema.root(x.schema.QueryType)
	}
}

// FieldType returns the declared output type of field on parent. __typename
// is answered for every composite type. Unknown fields yield nil.
func (x *Index) FieldType(parent *Type, field string) *TypeRef {
	if parent == nil {
		return nil
	}
	if field == language.TypenameField && parent.Kind.IsComposite() {
		return typenameRef
	}
	return x.fields[parent.Name][field]
}

// OutputScalarOf strips list and non-null wrappers from t and returns the
// underlying type name if it is a scalar.
func (x *Index) OutputScalarOf(t *TypeRef) (string, bool) {
	named := x.schema.Types[t.GetNamedType()]
	if named == nil || named.Kind != TypeKindScalar {
		return "", false
	}
	return named.Name, true
}

// InputFieldType returns the declared type of field on an input object type,
// or nil if inputObject is not an input object or has no such field.
func (x *Index) InputFieldType(inputObject *Type, field string) *TypeRef {
	if inputObject == nil || inputObject.Kind != TypeKindInputObject {
		return nil
	}
	return x.inputFields[inputObject.Name][field]
}

// IsLeafInput reports whether values of t are serialized whole on input.
func (x *Index) IsLeafInput(t *Type) bool { return t != nil && t.Kind.IsLeaf() }
