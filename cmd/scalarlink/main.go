package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/hanpama/scalarlink/internal/eventbus"
	"github.com/hanpama/scalarlink/internal/language"
	"github.com/hanpama/scalarlink/internal/link"
	"github.com/hanpama/scalarlink/internal/logging"
	"github.com/hanpama/scalarlink/internal/otel"
	"github.com/hanpama/scalarlink/internal/resolver"
	"github.com/hanpama/scalarlink/internal/scalar"
	"github.com/hanpama/scalarlink/internal/schema"
)

const rootUsage = `scalarlink: custom scalar transforms for GraphQL operations

USAGE:
  scalarlink <command> [flags]

COMMANDS:
  paths            Print where custom scalars appear in a query's result
  fetch            Run a query against an endpoint and print the parsed result
  help             Show help for any command
`

const pathsUsage = `paths FLAGS:
  -schema.file <file>     GraphQL SDL file (required)
  -query.file <file>      GraphQL query document (required)
  -scalars <a,b,...>      Scalar types to locate (default: DateTime,Duration,StartOfDay,Timestamp)
                          Names without a built-in transform are still located
`

const fetchUsage = `fetch FLAGS:
  -schema.file <file>             GraphQL SDL file (required)
  -query.file <file>              GraphQL query document (required)
  -transport.endpoint <url>       GraphQL HTTP endpoint (required)
  -transport.timeout <duration>   Request timeout, e.g. 10s (default: 10s)
  -transport.header <K=V>         Add a request header. Repeatable
  -transport.max-body-bytes N     Response size limit, 0 for none (default: 0)
  -operation <name>               Operation to run when the document has several
  -variables <json>               Variables as a JSON object
  -scalars <a,b,...>              Scalar transforms to apply (default: all built-in)
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: scalarlink)
  -log.level <level>              debug, info, warn or error (default: warn)
`

var json = jsoniter.Config{EscapeHTML: true, SortMapKeys: true, UseNumber: true}.Froze()

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "paths":
		return cmdPaths(cmdArgs, stdout, stderr)
	case "fetch":
		return cmdFetch(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "paths":
		fmt.Fprint(stdout, pathsUsage)
	case "fetch":
		fmt.Fprint(stdout, fetchUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type headerFlag [][2]string

func (h *headerFlag) String() string { return "" }

func (h *headerFlag) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return fmt.Errorf("invalid header %q", v)
	}
	*h = append(*h, [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	return nil
}

// document is what both commands load from -schema.file and -query.file.
type document struct {
	schema *schema.Schema
	query  *language.QueryDocument
}

func loadDocument(schemaFile, queryFile string) (*document, error) {
	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, err
	}
	sch, err := schema.BuildFromNamedSDL(schemaFile, string(sdl))
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	src, err := os.ReadFile(queryFile)
	if err != nil {
		return nil, err
	}
	doc, err := language.ParseQuery(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return &document{schema: sch, query: doc}, nil
}

func cmdPaths(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	queryFile := ""
	scalars := ""
	fs := flag.NewFlagSet("paths", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&queryFile, "query.file", queryFile, "GraphQL query document")
	fs.StringVar(&scalars, "scalars", scalars, "Scalar types to locate")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, pathsUsage)
		return err
	}
	if schemaFile == "" || queryFile == "" {
		fmt.Fprint(stderr, pathsUsage)
		return fmt.Errorf("-schema.file and -query.file are required")
	}

	d, err := loadDocument(schemaFile, queryFile)
	if err != nil {
		return err
	}
	reg := scalar.WellKnown()
	if scalars != "" {
		var missing []string
		reg, missing = reg.Select(scalars)
		for _, name := range missing {
			reg[name] = scalar.Funcs{}
		}
	}

	r := resolver.New(d.schema, reg)
	for _, p := range r.Paths(d.query) {
		fmt.Fprintf(stdout, "%s\t%s\n", p.TypeName, p)
	}
	return nil
}

func cmdFetch(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	queryFile := ""
	endpoint := ""
	timeout := 10 * time.Second
	maxBody := int64(0)
	operation := ""
	variables := ""
	scalars := ""
	otelEndpoint := ""
	otelService := "scalarlink"
	logLevel := "warn"
	var headers headerFlag

	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&queryFile, "query.file", queryFile, "GraphQL query document")
	fs.StringVar(&endpoint, "transport.endpoint", endpoint, "GraphQL HTTP endpoint")
	fs.DurationVar(&timeout, "transport.timeout", timeout, "Request timeout")
	fs.Var(&headers, "transport.header", "Add a request header")
	fs.Int64Var(&maxBody, "transport.max-body-bytes", maxBody, "Response size limit")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.StringVar(&variables, "variables", variables, "Variables as JSON")
	fs.StringVar(&scalars, "scalars", scalars, "Scalar transforms to apply")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, fetchUsage)
		return err
	}
	if schemaFile == "" || queryFile == "" || endpoint == "" {
		fmt.Fprint(stderr, fetchUsage)
		return fmt.Errorf("-schema.file, -query.file and -transport.endpoint are required")
	}

	d, err := loadDocument(schemaFile, queryFile)
	if err != nil {
		return err
	}
	reg := scalar.WellKnown()
	if scalars != "" {
		var missing []string
		if reg, missing = reg.Select(scalars); len(missing) > 0 {
			return fmt.Errorf("unknown scalars: %s", strings.Join(missing, ", "))
		}
	}
	vars := map[string]any{}
	if variables != "" {
		if err := json.UnmarshalFromString(variables, &vars); err != nil {
			return fmt.Errorf("invalid -variables JSON: %w", err)
		}
	}

	eventbus.Use(eventbus.New())
	detach, err := logging.Setup(stderr, logLevel, logging.WithConsole(true))
	if err != nil {
		return err
	}
	defer detach()
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	topts := []link.Option{link.WithTimeout(timeout), link.WithMaxBodyBytes(maxBody)}
	for _, h := range headers {
		topts = append(topts, link.WithHeader(h[0], h[1]))
	}
	l := link.New(resolver.New(d.schema, reg), link.NewHTTPTransport(endpoint, topts...))

	res, err := l.Execute(context.Background(), &resolver.Operation{
		Query:         d.query,
		OperationName: operation,
		Variables:     vars,
	})
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
