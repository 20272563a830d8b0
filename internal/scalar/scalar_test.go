package scalar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestFuncs_NilIsIdentity(t *testing.T) {
	var f Funcs
	v, err := f.Serialize("x")
	require.NoError(t, err)
	require.Equal(t, "x", v)
	v, err = f.ParseValue(42)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

type tagged string

func (tagged) Serialize(v any) (any, error)  { return v, nil }
func (tagged) ParseValue(v any) (any, error) { return v, nil }

func TestRegistry(t *testing.T) {
	r := Registry{"B": tagged("b"), "A": tagged("a"), "Nil": nil}
	require.Equal(t, []string{"A", "B", "Nil"}, r.Names())
	require.True(t, r.Has("A"))
	require.False(t, r.Has("Nil"))
	require.False(t, r.Has("C"))

	merged := r.Merge(Registry{"A": tagged("override")})
	require.Equal(t, tagged("override"), merged["A"])
	require.Equal(t, tagged("b"), merged["B"])
	require.Equal(t, tagged("a"), r["A"], "merge must not modify the receiver")

	sel, missing := WellKnown().Select("DateTime, Duration,,Nope")
	require.Equal(t, []string{"DateTime", "Duration"}, sel.Names())
	require.Equal(t, []string{"Nope"}, missing)
}

func TestStartOfDay_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"2018-02-03T00:00:00.000Z",
		"2019-02-03T00:00:00.000Z",
		"1970-01-01T00:00:00.000Z",
	} {
		parsed, err := StartOfDay.ParseValue(raw)
		require.NoError(t, err)
		back, err := StartOfDay.Serialize(parsed)
		require.NoError(t, err)
		require.Equal(t, raw, back)
	}
}

func TestStartOfDay_Truncates(t *testing.T) {
	parsed, err := StartOfDay.ParseValue("2018-02-03T12:13:14.000Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2018, 2, 3, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = StartOfDay.ParseValue(json.Number("1517660000000"))
	require.NoError(t, err)
	require.Equal(t, time.Date(2018, 2, 3, 0, 0, 0, 0, time.UTC), parsed)
}

func TestDateTime(t *testing.T) {
	parsed, err := DateTime.ParseValue("2018-02-03T12:13:14.000Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2018, 2, 3, 12, 13, 14, 0, time.UTC), parsed.(time.Time).UTC())

	out, err := DateTime.Serialize(time.Date(2018, 2, 3, 13, 13, 14, 0, time.FixedZone("CET", 3600)))
	require.NoError(t, err)
	require.Equal(t, "2018-02-03T12:13:14.000Z", out)

	_, err = DateTime.ParseValue(true)
	require.True(t, errors.Is(err, ErrUnsupportedValue))
	_, err = DateTime.ParseValue("not a date")
	require.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	parsed, err := Timestamp.ParseValue("2018-02-03T12:13:14.5Z")
	require.NoError(t, err)
	ts := parsed.(*timestamppb.Timestamp)
	require.Equal(t, int64(1517659994), ts.GetSeconds())
	require.Equal(t, int32(500000000), ts.GetNanos())

	out, err := Timestamp.Serialize(ts)
	require.NoError(t, err)
	require.Equal(t, "2018-02-03T12:13:14.5Z", out)

	_, err = Timestamp.Serialize(&timestamppb.Timestamp{Nanos: -1})
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	parsed, err := Duration.ParseValue("1h30m")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, parsed.(*durationpb.Duration).AsDuration())

	out, err := Duration.Serialize(durationpb.New(90 * time.Second))
	require.NoError(t, err)
	require.Equal(t, "1m30s", out)

	out, err = Duration.Serialize(2 * time.Second)
	require.NoError(t, err)
	require.Equal(t, "2s", out)

	_, err = Duration.ParseValue(12)
	require.True(t, errors.Is(err, ErrUnsupportedValue))
}
