// Package resolver applies registered scalar transforms to GraphQL
// operations on their way out and to results on their way back.
package resolver

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	eventbus "github.com/hanpama/scalarlink/internal/eventbus"
	events "github.com/hanpama/scalarlink/internal/events"
	language "github.com/hanpama/scalarlink/internal/language"
	scalar "github.com/hanpama/scalarlink/internal/scalar"
	"github.com/hanpama/scalarlink/internal/scalarpath"
	schema "github.com/hanpama/scalarlink/internal/schema"
	"github.com/hanpama/scalarlink/internal/transform"
)

// ErrNilOperation is returned when PrepareOutbound or FinishInbound is given
// no operation.
var ErrNilOperation = errors.New("resolver: nil operation")

type Options struct {
	// CacheSize bounds the number of path sets kept, one per document or
	// per operation of a multi-operation document.
	// 0 means unbounded.
	CacheSize int
}

type Option func(*Options)

// WithCacheSize keeps resolved paths for at most n documents, evicting the
// least recently used. Use it when documents are parsed per request.
func WithCacheSize(n int) Option { return func(o *Options) { o.CacheSize = n } }

// Resolver is safe for concurrent use.
type Resolver struct {
	idx   *schema.Index
	reg   scalar.Registry
	ser   *transform.Serializer
	cache pathCache
	group singleflight.Group
}

func New(sch *schema.Schema, reg scalar.Registry, opts ...Option) *Resolver {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	idx := schema.NewIndex(sch)
	r := &Resolver{idx: idx, reg: reg, ser: transform.NewSerializer(idx, reg)}
	if o.CacheSize > 0 {
		r.cache = newLRUCache(o.CacheSize)
	} else {
		r.cache = newMapCache()
	}
	return r
}

func (r *Resolver) Registry() scalar.Registry { return r.reg }

// Paths returns the resolved scalar paths of every operation in doc. The
// slice is shared between callers and must not be modified.
func (r *Resolver) Paths(doc *language.QueryDocument) []scalarpath.ResolvedPath {
	if doc == nil {
		return nil
	}
	return r.resolve(cacheKey{doc: doc})
}

// OperationPaths returns the resolved scalar paths of the operation op runs.
// When the document holds several operations and op names none of them,
// the paths of the whole document are returned.
func (r *Resolver) OperationPaths(op *Operation) []scalarpath.ResolvedPath {
	if op == nil || op.Query == nil {
		return nil
	}
	k := cacheKey{doc: op.Query}
	if len(op.Query.Operations) > 1 {
		k.op = op.Definition()
	}
	return r.resolve(k)
}

func (r *Resolver) resolve(k cacheKey) []scalarpath.ResolvedPath {
	if p, ok := r.cache.get(k); ok {
		return p
	}
	v, _, _ := r.group.Do(k.String(), func() (any, error) {
		if p, ok := r.cache.get(k); ok {
			return p, nil
		}
		start := time.Now()
		var occ scalarpath.Occurrences
		operations := len(k.doc.Operations)
		if k.op != nil {
			occ = scalarpath.CollectOperation(r.idx, k.doc, k.op, r.reg.Has)
			operations = 1
		} else {
			occ = scalarpath.Collect(r.idx, k.doc, r.reg.Has)
		}
		p := scalarpath.Assemble(occ)
		r.cache.add(k, p)
		eventbus.Publish(context.Background(), events.PathsResolved{
			Operations: operations,
			Fragments:  len(k.doc.Fragments),
			Paths:      len(p),
			Duration:   time.Since(start),
		})
		return p, nil
	})
	return v.([]scalarpath.ResolvedPath)
}

// PrepareOutbound serializes op.Variables in place and returns op.
//
// The variable definitions come from the operation named by
// op.OperationName, or the only operation of the document. An unnamed
// request against a document with several operations uses the definitions
// of all of them.
func (r *Resolver) PrepareOutbound(op *Operation) (*Operation, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if op.Query == nil || len(op.Variables) == 0 {
		return op, nil
	}
	if err := r.ser.Variables(variableDefinitions(op), op.Variables); err != nil {
		return nil, err
	}
	return op, nil
}

func variableDefinitions(op *Operation) language.VariableDefinitionList {
	if def := op.Definition(); def != nil {
		return def.VariableDefinitions
	}
	if op.OperationName != "" {
		return nil
	}
	// A variable declared by several operations is serialized once, against
	// its first declaration.
	var defs language.VariableDefinitionList
	seen := make(map[string]bool)
	for _, o := range op.Query.Operations {
		for _, def := range o.VariableDefinitions {
			if !seen[def.Variable] {
				seen[def.Variable] = true
				defs = append(defs, def)
			}
		}
	}
	return defs
}

// FinishInbound parses the registered scalars found in res.Data at the paths
// of the operation that ran. When there is nothing to do res itself is
// returned; otherwise a new Result carrying the transformed data and res's
// errors and extensions.
func (r *Resolver) FinishInbound(op *Operation, res *Result) (*Result, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if res == nil || res.Data == nil {
		return res, nil
	}
	paths := r.OperationPaths(op)
	if len(paths) == 0 {
		return res, nil
	}
	data, err := transform.Result(res.Data, paths, r.reg)
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, Errors: res.Errors, Extensions: res.Extensions}, nil
}
