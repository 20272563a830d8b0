package schema

import (
	"sort"

	language "github.com/hanpama/scalarlink/internal/language"
)

// BuildFromAST converts a validated gqlparser schema into a Schema.
// Type, field and input field order follows the source definitions.
func BuildFromAST(src *language.ValidatedSchema) *Schema {
	s := &Schema{Types: make(map[string]*Type, len(src.Types))}
	if src.Query != nil {
		s.QueryType = src.Query.Name
	}
	if src.Mutation != nil {
		s.MutationType = src.Mutation.Name
	}
	if src.Subscription != nil {
		s.SubscriptionType = src.Subscription.Name
	}
	if src.Description != "" {
		s.Description = src.Description
	}
	for name, def := range src.Types {
		s.Types[name] = buildType(def)
	}
	return s
}

func buildType(def *language.Definition) *Type {
	t := &Type{Name: def.Name, Kind: TypeKind(def.Kind), Description: def.Description}
	switch def.Kind {
	case language.Object, language.Interface:
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		for _, f := range def.Fields {
			t.Fields = append(t.Fields, buildField(f))
		}
	case language.Union:
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
		sort.Strings(t.PossibleTypes)
	case language.Enum:
		for _, v := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, v.Name)
		}
	case language.InputObject:
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, &InputValue{
				Name:        f.Name,
				Description: f.Description,
				Type:        TypeRefFromAST(f.Type),
			})
		}
	}
	return t
}

func buildField(def *language.FieldDefinition) *Field {
	f := &Field{Name: def.Name, Description: def.Description, Type: TypeRefFromAST(def.Type)}
	for _, arg := range def.Arguments {
		f.Arguments = append(f.Arguments, &InputValue{
			Name:        arg.Name,
			Description: arg.Description,
			Type:        TypeRefFromAST(arg.Type),
		})
	}
	return f
}

// TypeRefFromAST converts a gqlparser type expression (as found on variable
// definitions and schema fields) into a TypeRef.
func TypeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(TypeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(TypeRefFromAST(t.Elem))
	}
	return nil
}

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromNamedSDL("schema.graphql", sdl)
}

// BuildFromNamedSDL is BuildFromSDL with a source name used in error
// locations.
func BuildFromNamedSDL(name, sdl string) (*Schema, error) {
	src, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(src), nil
}
