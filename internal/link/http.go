package link

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	eventbus "github.com/hanpama/scalarlink/internal/eventbus"
	events "github.com/hanpama/scalarlink/internal/events"
	language "github.com/hanpama/scalarlink/internal/language"
	reqid "github.com/hanpama/scalarlink/internal/reqid"
	resolver "github.com/hanpama/scalarlink/internal/resolver"
)

// Numbers decode as json.Number so numeric custom scalars reach ParseValue
// without losing precision.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// ErrBodyTooLarge is returned when a response exceeds the configured limit.
var ErrBodyTooLarge = errors.New("link: response body too large")

// HTTPError is returned for a non-2xx response that carries no GraphQL
// result.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("link: upstream responded %s", e.Status)
}

type Options struct {
	// Client performs the requests. Default is http.DefaultClient.
	Client *http.Client

	// Header is added to every request.
	Header http.Header

	// Timeout applies when the context has no deadline. 0 means none.
	Timeout time.Duration

	// MaxBodyBytes limits the size of the response body. 0 means unlimited.
	MaxBodyBytes int64
}

type Option func(*Options)

func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithMaxBodyBytes(n int64) Option      { return func(o *Options) { o.MaxBodyBytes = n } }
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Header == nil {
			o.Header = http.Header{}
		}
		o.Header.Add(key, value)
	}
}

// HTTPTransport posts operations to a GraphQL endpoint as JSON.
type HTTPTransport struct {
	endpoint string
	opt      Options
}

func NewHTTPTransport(endpoint string, opts ...Option) *HTTPTransport {
	op := Options{Client: http.DefaultClient}
	for _, f := range opts {
		f(&op)
	}
	return &HTTPTransport{endpoint: endpoint, opt: op}
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

func (t *HTTPTransport) RoundTrip(ctx context.Context, op *resolver.Operation) (res *resolver.Result, err error) {
	if op == nil || op.Query == nil {
		return nil, resolver.ErrNilOperation
	}
	if _, ok := ctx.Deadline(); !ok && t.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opt.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(graphQLRequest{
		Query:         language.FormatQuery(op.Query),
		OperationName: op.OperationName,
		Variables:     op.Variables,
		Extensions:    op.Extensions,
	})
	if err != nil {
		return nil, fmt.Errorf("link: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	for k, vs := range t.opt.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")
	if rid, ok := reqid.FromContext(ctx); ok {
		req.Header.Set(reqid.Header, reqid.Format(rid))
	}

	status := 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPClientStart{Request: req})
	defer func() {
		eventbus.Publish(ctx, events.HTTPClientFinish{Request: req, Status: status, Err: err, Duration: time.Since(start)})
	}()

	resp, err := t.opt.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	reader := io.Reader(resp.Body)
	if t.opt.MaxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, t.opt.MaxBodyBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("link: read response: %w", err)
	}
	if t.opt.MaxBodyBytes > 0 && int64(len(raw)) > t.opt.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}

	var out resolver.Result
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode/100 != 2 && (decodeErr != nil || (out.Data == nil && len(out.Errors) == 0)) {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: raw}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("link: decode response: %w", decodeErr)
	}
	return &out, nil
}
