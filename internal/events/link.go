package events

import "time"

// OperationStart is emitted before an operation enters the scalar link.
type OperationStart struct {
	OperationName string
	OperationType string
	Variables     int
}

// OperationFinish is emitted after the link has transformed the result.
type OperationFinish struct {
	OperationName string
	OperationType string
	Paths         int
	Errors        int
	Err           error
	Duration      time.Duration
}

// PathsResolved is emitted when scalar paths for a document are computed
// rather than served from cache.
type PathsResolved struct {
	Operations int
	Fragments  int
	Paths      int
	Duration   time.Duration
}
