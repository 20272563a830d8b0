package events

import (
	"net/http"
	"time"
)

// HTTPClientStart is emitted before a GraphQL request is sent upstream.
// Context carries the request context.
type HTTPClientStart struct {
	Request *http.Request
}

// HTTPClientFinish is emitted once the upstream response is read, or the
// round trip failed.
type HTTPClientFinish struct {
	Request  *http.Request
	Status   int
	Err      error
	Duration time.Duration
}
