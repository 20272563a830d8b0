// Package logging writes link activity to a zerolog logger by subscribing
// to the event bus.
package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	eventbus "github.com/hanpama/scalarlink/internal/eventbus"
	events "github.com/hanpama/scalarlink/internal/events"
	reqid "github.com/hanpama/scalarlink/internal/reqid"
)

type Options struct {
	// Console renders human readable lines instead of JSON.
	Console bool
	NoColor bool
}

type Option func(*Options)

func WithConsole(noColor bool) Option {
	return func(o *Options) { o.Console, o.NoColor = true, noColor }
}

// Setup builds a logger writing to w at level ("debug", "info", ...; empty
// means info) and subscribes it to the global bus. The returned function
// detaches it.
func Setup(w io.Writer, level string, opts ...Option) (func(), error) {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	if o.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: o.NoColor}
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Subscribe(eventbus.Default(), l), nil
}

// Subscribe logs events published on b to l.
func Subscribe(b *eventbus.Bus, l zerolog.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.SubscribeTo(b, func(ctx context.Context, e events.OperationStart) {
			withRequestID(ctx, l.Debug()).
				Str("operation", e.OperationName).
				Str("type", e.OperationType).
				Int("variables", e.Variables).
				Msg("operation start")
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.OperationFinish) {
			ev := l.Info()
			if e.Err != nil {
				ev = l.Error().Err(e.Err)
			}
			withRequestID(ctx, ev).
				Str("operation", e.OperationName).
				Str("type", e.OperationType).
				Int("paths", e.Paths).
				Int("errors", e.Errors).
				Dur("duration", e.Duration).
				Msg("operation finish")
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.PathsResolved) {
			l.Debug().
				Int("operations", e.Operations).
				Int("fragments", e.Fragments).
				Int("paths", e.Paths).
				Dur("duration", e.Duration).
				Msg("scalar paths resolved")
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.HTTPClientStart) {
			withRequestID(ctx, l.Debug()).
				Str("method", e.Request.Method).
				Str("url", e.Request.URL.Redacted()).
				Msg("upstream request")
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.HTTPClientFinish) {
			ev := l.Debug()
			switch {
			case e.Err != nil:
				ev = l.Warn().Err(e.Err)
			case e.Status >= 400:
				ev = l.Warn()
			}
			withRequestID(ctx, ev).
				Str("url", e.Request.URL.Redacted()).
				Int("status", e.Status).
				Dur("duration", e.Duration).
				Msg("upstream response")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func withRequestID(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if rid, ok := reqid.FromContext(ctx); ok {
		return ev.Str("request_id", reqid.Format(rid))
	}
	return ev
}
