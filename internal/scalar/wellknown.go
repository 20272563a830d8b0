package scalar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ErrUnsupportedValue is returned when a well-known scalar is handed a value
// of a shape it does not convert.
var ErrUnsupportedValue = errors.New("scalar: unsupported value")

// isoLayout matches the millisecond precision UTC form most GraphQL servers
// emit for date-time scalars.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// DateTime converts RFC 3339 strings (or epoch milliseconds) to time.Time.
var DateTime Scalar = Funcs{
	SerializeFunc: func(v any) (any, error) {
		t, err := toTime("DateTime", v)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(isoLayout), nil
	},
	ParseValueFunc: func(v any) (any, error) {
		return toTime("DateTime", v)
	},
}

// StartOfDay is DateTime truncated to midnight UTC in both directions.
var StartOfDay Scalar = Funcs{
	SerializeFunc: func(v any) (any, error) {
		t, err := toTime("StartOfDay", v)
		if err != nil {
			return nil, err
		}
		return truncateDay(t).Format(isoLayout), nil
	},
	ParseValueFunc: func(v any) (any, error) {
		t, err := toTime("StartOfDay", v)
		if err != nil {
			return nil, err
		}
		return truncateDay(t), nil
	},
}

// Timestamp maps RFC 3339 strings to protobuf Timestamps, for clients that
// hand results straight to gRPC services.
var Timestamp Scalar = Funcs{
	SerializeFunc: func(v any) (any, error) {
		if ts, ok := v.(*timestamppb.Timestamp); ok {
			if err := ts.CheckValid(); err != nil {
				return nil, fmt.Errorf("scalar: Timestamp: %w", err)
			}
			return ts.AsTime().Format(time.RFC3339Nano), nil
		}
		t, err := toTime("Timestamp", v)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(time.RFC3339Nano), nil
	},
	ParseValueFunc: func(v any) (any, error) {
		if ts, ok := v.(*timestamppb.Timestamp); ok {
			return ts, nil
		}
		t, err := toTime("Timestamp", v)
		if err != nil {
			return nil, err
		}
		return timestamppb.New(t), nil
	},
}

// Duration maps Go duration strings ("1h30m") to protobuf Durations.
var Duration Scalar = Funcs{
	SerializeFunc: func(v any) (any, error) {
		switch d := v.(type) {
		case *durationpb.Duration:
			if err := d.CheckValid(); err != nil {
				return nil, fmt.Errorf("scalar: Duration: %w", err)
			}
			return d.AsDuration().String(), nil
		case time.Duration:
			return d.String(), nil
		case string:
			pd, err := time.ParseDuration(d)
			if err != nil {
				return nil, fmt.Errorf("scalar: Duration: %w", err)
			}
			return pd.String(), nil
		}
		return nil, fmt.Errorf("%w: Duration cannot serialize %T", ErrUnsupportedValue, v)
	},
	ParseValueFunc: func(v any) (any, error) {
		switch d := v.(type) {
		case *durationpb.Duration:
			return d, nil
		case string:
			pd, err := time.ParseDuration(d)
			if err != nil {
				return nil, fmt.Errorf("scalar: Duration: %w", err)
			}
			return durationpb.New(pd), nil
		}
		return nil, fmt.Errorf("%w: Duration cannot parse %T", ErrUnsupportedValue, v)
	},
}

// WellKnown returns a registry with every scalar in this package under its
// conventional type name.
func WellKnown() Registry {
	return Registry{
		"DateTime":   DateTime,
		"StartOfDay": StartOfDay,
		"Timestamp":  Timestamp,
		"Duration":   Duration,
	}
}

func toTime(name string, v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x != nil {
			return *x, nil
		}
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, fmt.Errorf("scalar: %s: %w", name, err)
		}
		return t, nil
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("scalar: %s: %w", name, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(x)).UTC(), nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int:
		return time.UnixMilli(int64(x)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s cannot convert %T", ErrUnsupportedValue, name, v)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
