package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSDL = `
type Query {
  today: StartOfDay!
  event(at: StartOfDay!): Event
  events: [Event]
}

type Event {
  at: DateTime
  length: Duration
  title: String
}

scalar StartOfDay
scalar DateTime
scalar Duration
scalar Color
`

const testQuery = `
query Today($at: StartOfDay!) {
  today
  event(at: $at) { ...E }
  events { ...E }
}
fragment E on Event { at length title }
`

func writeFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	sdl := filepath.Join(dir, "schema.graphql")
	query := filepath.Join(dir, "query.graphql")
	require.NoError(t, os.WriteFile(sdl, []byte(testSDL), 0o644))
	require.NoError(t, os.WriteFile(query, []byte(testQuery), 0o644))
	return sdl, query
}

func TestPaths(t *testing.T) {
	sdl, query := writeFiles(t)
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"paths", "-schema.file", sdl, "-query.file", query}, &stdout, io.Discard))
	require.Equal(t, strings.Join([]string{
		"StartOfDay\ttoday",
		"DateTime\tevent.at",
		"DateTime\tevents.at",
		"Duration\tevent.length",
		"Duration\tevents.length",
	}, "\n")+"\n", stdout.String())
}

func TestPaths_SelectedScalars(t *testing.T) {
	sdl, query := writeFiles(t)
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"paths", "-schema.file", sdl, "-query.file", query, "-scalars", "StartOfDay,String"}, &stdout, io.Discard))
	require.Equal(t, "StartOfDay\ttoday\nString\tevent.title\nString\tevents.title\n", stdout.String())
}

func TestFetch(t *testing.T) {
	sdl, query := writeFiles(t)
	var gotBody string
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("X-Api-Key")
		_, _ = io.WriteString(w, `{"data":{"today":"2018-02-03T10:11:12.000Z","event":{"at":"2018-02-03T10:11:12.000Z","length":"90s","title":"t"},"events":[]}}`)
	}))
	defer srv.Close()

	var stdout bytes.Buffer
	err := run([]string{"fetch",
		"-schema.file", sdl, "-query.file", query,
		"-transport.endpoint", srv.URL,
		"-transport.header", "X-Api-Key=k",
		"-variables", `{"at":"2018-02-03T10:00:00Z"}`,
		"-log.level", "error",
	}, &stdout, io.Discard)
	require.NoError(t, err)

	require.Contains(t, gotBody, `"at":"2018-02-03T00:00:00.000Z"`)
	require.Equal(t, "k", gotHeader)
	out := stdout.String()
	require.Contains(t, out, `"today": "2018-02-03T00:00:00Z"`)
	require.Contains(t, out, `"title": "t"`)
}

func TestFetch_UnknownScalar(t *testing.T) {
	sdl, query := writeFiles(t)
	err := run([]string{"fetch", "-schema.file", sdl, "-query.file", query,
		"-transport.endpoint", "http://127.0.0.1:1", "-scalars", "Color"}, io.Discard, io.Discard)
	require.ErrorContains(t, err, "unknown scalars: Color")
}

func TestUsageErrors(t *testing.T) {
	var stderr bytes.Buffer
	require.Error(t, run(nil, io.Discard, &stderr))
	require.Contains(t, stderr.String(), "USAGE")

	require.ErrorContains(t, run([]string{"bogus"}, io.Discard, io.Discard), `unknown command "bogus"`)
	require.Error(t, run([]string{"paths"}, io.Discard, io.Discard))
	require.Error(t, run([]string{"fetch", "-transport.header", "novalue"}, io.Discard, io.Discard))
	require.ErrorContains(t, run([]string{"help", "bogus"}, io.Discard, io.Discard), "unknown help topic")
}

func TestHelp(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"help", "fetch"}, &stdout, io.Discard))
	require.Contains(t, stdout.String(), "-transport.endpoint")
}
