package transform

import (
	"fmt"
	"strings"
)

// ScalarError wraps an error returned by a scalar's ParseValue or Serialize
// with the position it was applied at.
type ScalarError struct {
	TypeName string
	Path     []string
	Err      error
}

func (e *ScalarError) Error() string {
	return fmt.Sprintf("transform: %s at %q: %v", e.TypeName, strings.Join(e.Path, "."), e.Err)
}

func (e *ScalarError) Unwrap() error { return e.Err }
