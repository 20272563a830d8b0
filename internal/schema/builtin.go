package schema

var builtinScalars = []string{"String", "Int", "Float", "Boolean", "ID"}

// IsBuiltinScalar reports whether name is one of the five scalars every
// schema defines implicitly.
func IsBuiltinScalar(name string) bool {
	for _, b := range builtinScalars {
		if b == name {
			return true
		}
	}
	return false
}

// New assembles a Schema from hand-built types, for tests and callers that
// do not start from SDL. Built-in scalars are added unless types defines them.
func New(queryType string, types ...*Type) *Schema {
	s := &Schema{QueryType: queryType, Types: make(map[string]*Type, len(types)+len(builtinScalars))}
	for _, name := range builtinScalars {
		s.Types[name] = &Type{Name: name, Kind: TypeKindScalar}
	}
	for _, t := range types {
		s.Types[t.Name] = t
	}
	return s
}
