// Package link places a resolver between a GraphQL client and its transport:
// variables are serialized before an operation is sent and custom scalars in
// the result are parsed before it is returned.
package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventbus "github.com/hanpama/scalarlink/internal/eventbus"
	events "github.com/hanpama/scalarlink/internal/events"
	reqid "github.com/hanpama/scalarlink/internal/reqid"
	resolver "github.com/hanpama/scalarlink/internal/resolver"
)

// ErrNoTransport is returned by a Link without a next transport.
var ErrNoTransport = errors.New("link: no transport")

// Transport sends an operation and returns its result.
type Transport interface {
	RoundTrip(ctx context.Context, op *resolver.Operation) (*resolver.Result, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, op *resolver.Operation) (*resolver.Result, error)

func (f TransportFunc) RoundTrip(ctx context.Context, op *resolver.Operation) (*resolver.Result, error) {
	return f(ctx, op)
}

// Link is itself a Transport, so links can be chained.
type Link struct {
	resolver *resolver.Resolver
	next     Transport
}

func New(r *resolver.Resolver, next Transport) *Link {
	return &Link{resolver: r, next: next}
}

func (l *Link) RoundTrip(ctx context.Context, op *resolver.Operation) (*resolver.Result, error) {
	return l.Execute(ctx, op)
}

// Execute serializes op's variables, forwards op to the next transport and
// parses the custom scalars of the result.
func (l *Link) Execute(ctx context.Context, op *resolver.Operation) (res *resolver.Result, err error) {
	if op == nil {
		return nil, resolver.ErrNilOperation
	}
	if l.next == nil {
		return nil, ErrNoTransport
	}
	ctx, _ = reqid.Ensure(ctx)

	name, opType := op.OperationName, ""
	if def := op.Definition(); def != nil {
		name, opType = def.Name, string(def.Operation)
	}
	start := time.Now()
	eventbus.Publish(ctx, events.OperationStart{OperationName: name, OperationType: opType, Variables: len(op.Variables)})
	defer func() {
		fin := events.OperationFinish{
			OperationName: name,
			OperationType: opType,
			Paths:         len(l.resolver.OperationPaths(op)),
			Err:           err,
			Duration:      time.Since(start),
		}
		if res != nil {
			fin.Errors = len(res.Errors)
		}
		eventbus.Publish(ctx, fin)
	}()

	if _, err = l.resolver.PrepareOutbound(op); err != nil {
		return nil, fmt.Errorf("link: prepare %q: %w", name, err)
	}
	res, err = l.next.RoundTrip(ctx, op)
	if err != nil {
		return nil, err
	}
	res, err = l.resolver.FinishInbound(op, res)
	if err != nil {
		return nil, fmt.Errorf("link: finish %q: %w", name, err)
	}
	return res, nil
}
