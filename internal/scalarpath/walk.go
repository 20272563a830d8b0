package scalarpath

import (
	language "github.com/hanpama/scalarlink/internal/language"
	schema "github.com/hanpama/scalarlink/internal/schema"
)

type collector struct {
	idx      *schema.Index
	isScalar func(string) bool
	path     *pathBuilder
	scope    string
	out      Occurrences
}

// Collect records scalar and spread occurrences of doc. isScalar decides
// which scalar type names are of interest; a nil isScalar accepts none.
//
// Operations are walked first, then fragment definitions, each in document
// order, so the result is stable for a given document.
func Collect(idx *schema.Index, doc *language.QueryDocument, isScalar func(string) bool) Occurrences {
	if doc == nil {
		return Occurrences{}
	}
	return collect(idx, doc, doc.Operations, isScalar)
}

// CollectOperation is Collect restricted to a single operation of doc.
// Fragment definitions are still all walked, but only those reached from op
// produce paths once assembled.
func CollectOperation(idx *schema.Index, doc *language.QueryDocument, op *language.OperationDefinition, isScalar func(string) bool) Occurrences {
	if doc == nil || op == nil {
		return Occurrences{}
	}
	return collect(idx, doc, language.OperationList{op}, isScalar)
}

func collect(idx *schema.Index, doc *language.QueryDocument, ops language.OperationList, isScalar func(string) bool) Occurrences {
	c := &collector{idx: idx, isScalar: isScalar, path: newPathBuilder(8)}
	if c.isScalar == nil {
		c.isScalar = func(string) bool { return false }
	}
	for _, op := range ops {
		c.scope = ""
		c.path.reset()
		c.selectionSet(idx.RootType(op.Operation), op.SelectionSet)
	}
	for _, frag := range doc.Fragments {
		c.scope = frag.Name
		c.path.reset()
		c.selectionSet(idx.Type(frag.TypeCondition), frag.SelectionSet)
	}
	return c.out
}

func (c *collector) selectionSet(parent *schema.Type, set language.SelectionSet) {
	if parent == nil {
		return
	}
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			c.field(parent, sel)
		case *language.FragmentSpread:
			c.out.Spreads = append(c.out.Spreads, SpreadOccurrence{
				FragmentName: sel.Name,
				Path:         c.path.copy(),
				Fragment:     c.scope,
			})
		case *language.InlineFragment:
			narrowed := parent
			if sel.TypeCondition != "" {
				narrowed = c.idx.Type(sel.TypeCondition)
			}
			c.selectionSet(narrowed, sel.SelectionSet)
		}
	}
}

func (c *collector) field(parent *schema.Type, f *language.Field) {
	ref := c.idx.FieldType(parent, f.Name)
	if ref == nil {
		return
	}
	c.path.push(language.ResponseKey(f))
	defer c.path.pop()

	if name, ok := c.idx.OutputScalarOf(ref); ok {
		if c.isScalar(name) {
			c.out.Scalars = append(c.out.Scalars, ScalarOccurrence{
				TypeName: name,
				Path:     c.path.copy(),
				Fragment: c.scope,
			})
		}
		return
	}
	if len(f.SelectionSet) > 0 {
		c.selectionSet(c.idx.Type(ref.GetNamedType()), f.SelectionSet)
	}
}
