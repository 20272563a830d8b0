package resolver

import language "github.com/hanpama/scalarlink/internal/language"

// Operation is a GraphQL request on its way to a server. Query is the parsed
// document; resolved scalar paths are cached per *QueryDocument pointer, so
// documents should be parsed once and reused.
type Operation struct {
	Query         *language.QueryDocument
	OperationName string
	Variables     map[string]any
	Extensions    map[string]any
}

// Definition returns the operation definition that will run, or nil when
// the document is ambiguous or has none.
func (o *Operation) Definition() *language.OperationDefinition {
	return language.SelectOperation(o.Query, o.OperationName)
}

// Result is a GraphQL response.
type Result struct {
	Data       any                `json:"data"`
	Errors     language.ErrorList `json:"errors,omitempty"`
	Extensions map[string]any     `json:"extensions,omitempty"`
}
