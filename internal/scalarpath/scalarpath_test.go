package scalarpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/scalarlink/internal/language"
	schema "github.com/hanpama/scalarlink/internal/schema"
)

const testSDL = `
type Query {
  day: Date!
  days: [Date]
  object: MyObject
  objects: [MyObject]
  node: Node
  name: String
}

type Mutation {
  touch: MyObject
}

interface Node { id: ID! }

type MyObject implements Node {
  id: ID!
  morning: StartOfDay!
  nested: MyObject
  stamps: [[Date]]
}

scalar Date
scalar StartOfDay
`

func newIndex(t *testing.T) *schema.Index {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return schema.NewIndex(s)
}

func isCustom(name string) bool { return name == "Date" || name == "StartOfDay" }

func resolve(t *testing.T, query string) []string {
	t.Helper()
	occ := Collect(newIndex(t), language.MustParseQuery(query), isCustom)
	var out []string
	for _, p := range Assemble(occ) {
		out = append(out, p.TypeName+":"+p.String())
	}
	return out
}

func assertPaths(t *testing.T, want, got []string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_TopLevelAndLists(t *testing.T) {
	got := resolve(t, `{ day days name objects { stamps morning id } }`)
	assertPaths(t, []string{"Date:day", "Date:days", "Date:objects.stamps", "StartOfDay:objects.morning"}, got)
}

func TestResolve_Aliasing(t *testing.T) {
	got := resolve(t, `{ a: day b: day object { later: nested { m: morning } } }`)
	assertPaths(t, []string{"Date:a", "Date:b", "StartOfDay:object.later.m"}, got)
}

func TestResolve_FragmentReuse(t *testing.T) {
	got := resolve(t, `
		query {
			first: object { ...Morning }
			second: object { nested { ...Morning } }
		}
		fragment Morning on MyObject { morning }
	`)
	assertPaths(t, []string{"StartOfDay:first.morning", "StartOfDay:second.nested.morning"}, got)
}

func TestResolve_NestedFragments(t *testing.T) {
	got := resolve(t, `
		query { object { ...A } }
		fragment A on MyObject { nested { ...B } }
		fragment B on MyObject { x: nested { ...C } y: nested { ...C } }
		fragment C on MyObject { morning }
	`)
	assertPaths(t, []string{
		"StartOfDay:object.nested.x.morning",
		"StartOfDay:object.nested.y.morning",
	}, got)
}

func TestResolve_InlineFragments(t *testing.T) {
	got := resolve(t, `{
		node {
			id
			... on MyObject { morning nested { ... { stamps } } }
		}
	}`)
	assertPaths(t, []string{"StartOfDay:node.morning", "Date:node.nested.stamps"}, got)
}

func TestResolve_SpreadInsideInlineFragment(t *testing.T) {
	got := resolve(t, `
		{ node { ... on MyObject { ...M } } }
		fragment M on MyObject { morning }
	`)
	assertPaths(t, []string{"StartOfDay:node.morning"}, got)
}

func TestResolve_UnreachedFragment(t *testing.T) {
	got := resolve(t, `
		{ day }
		fragment Unused on MyObject { morning }
	`)
	assertPaths(t, []string{"Date:day"}, got)
}

func TestResolve_UnknownFieldsSkipped(t *testing.T) {
	got := resolve(t, `{ missing { day } day object { bogus { morning } morning } }`)
	assertPaths(t, []string{"Date:day", "StartOfDay:object.morning"}, got)
}

func TestResolve_MutationRoot(t *testing.T) {
	got := resolve(t, `mutation { touch { morning } }`)
	assertPaths(t, []string{"StartOfDay:touch.morning"}, got)
}

func TestResolve_MultipleOperations(t *testing.T) {
	got := resolve(t, `
		query A { day }
		query B { object { ...M } }
		fragment M on MyObject { morning }
	`)
	assertPaths(t, []string{"Date:day", "StartOfDay:object.morning"}, got)
}

func TestCollect_RelativePaths(t *testing.T) {
	doc := language.MustParseQuery(`
		query { object { nested { ...M } } }
		fragment M on MyObject { inner: nested { morning } }
	`)
	got := Collect(newIndex(t), doc, isCustom)
	want := Occurrences{
		Scalars: []ScalarOccurrence{{TypeName: "StartOfDay", Path: []string{"inner", "morning"}, Fragment: "M"}},
		Spreads: []SpreadOccurrence{{FragmentName: "M", Path: []string{"object", "nested"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("occurrences mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_Stable(t *testing.T) {
	idx := newIndex(t)
	doc := language.MustParseQuery(`
		query { a: object { ...M } b: objects { ...M } day }
		fragment M on MyObject { morning stamps }
	`)
	first := Assemble(Collect(idx, doc, isCustom))
	second := Assemble(Collect(idx, doc, isCustom))
	require.Len(t, first, 5)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("resolution not stable (-first +second):\n%s", diff)
	}
}

func TestCollect_TypenameIsString(t *testing.T) {
	occ := Collect(newIndex(t), language.MustParseQuery(`{ __typename object { __typename } }`),
		func(name string) bool { return name == "String" })
	var paths []string
	for _, p := range Assemble(occ) {
		paths = append(paths, p.String())
	}
	assertPaths(t, []string{"__typename", "object.__typename"}, paths)
}

func TestCollect_NilInputs(t *testing.T) {
	require.Empty(t, Collect(newIndex(t), nil, isCustom).Scalars)
	require.Empty(t, Collect(newIndex(t), language.MustParseQuery(`{ day }`), nil).Scalars)
}

func TestAssemble_CycleTerminates(t *testing.T) {
	occ := Occurrences{
		Scalars: []ScalarOccurrence{{TypeName: "Date", Path: []string{"d"}, Fragment: "A"}},
		Spreads: []SpreadOccurrence{
			{FragmentName: "A", Path: []string{"x"}, Fragment: "B"},
			{FragmentName: "B", Path: []string{"y"}, Fragment: "A"},
			{FragmentName: "A", Path: []string{"root"}},
		},
	}
	got := Assemble(occ)
	require.Equal(t, []ResolvedPath{{Path: []string{"root", "d"}, TypeName: "Date"}}, got)
}

func TestCollectOperation_OnlySelectedOperation(t *testing.T) {
	doc := language.MustParseQuery(`
		query A { object { morning: id } ...Q }
		query B { object { morning } other: object { ...M } }
		fragment M on MyObject { morning }
		fragment Q on Query { day }
	`)
	idx := newIndex(t)
	paths := func(name string) []string {
		var out []string
		occ := CollectOperation(idx, doc, doc.Operations.ForName(name), isCustom)
		for _, p := range Assemble(occ) {
			out = append(out, p.TypeName+":"+p.String())
		}
		return out
	}
	assertPaths(t, []string{"Date:day"}, paths("A"))
	assertPaths(t, []string{"StartOfDay:object.morning", "StartOfDay:other.morning"}, paths("B"))
	require.Empty(t, CollectOperation(idx, doc, nil, isCustom).Scalars)
}
