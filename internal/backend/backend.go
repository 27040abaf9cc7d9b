// Package backend defines the compilation back-end contract: a Backend turns
// a lowered ir.Module into some target-specific Output (text, object code,
// an in-process interpreter handle, ...), plus the options that steer that
// compilation and the error shape it can fail with.
package backend

import (
	"fmt"

	"github.com/Sir-Teo/mica/internal/ir"
)

// BackendOptions steers a single compilation: whether to run optimization passes,
// whether to retain debug information, and an optional target triple for
// cross-compiling back-ends.
type BackendOptions struct {
	Optimize     bool
	DebugInfo    bool
	TargetTriple *string
}

// Backend compiles one ir.Module into an Output. Go has no associated-type
// equivalent of the trait this mirrors, so Output is a type parameter
// instead: a concrete back-end instantiates Backend[MyOutput] and the
// compiler picks the parameter up from the first call site.
type Backend[Output any] interface {
	Compile(module ir.Module, options BackendOptions) (Output, error)
}

// ErrorKind tags the two ways a Backend can fail.
type ErrorKind int

const (
	ErrUnsupported ErrorKind = iota
	ErrInternal
)

// BackendError is the uniform error type every Backend implementation returns.
// Unsupported marks a module using a feature this back-end doesn't (yet)
// implement; Internal marks a bug in the back-end itself.
type BackendError struct {
	Kind    ErrorKind
	Message string
}

func Unsupported(format string, args ...any) *BackendError {
	return &BackendError{Kind: ErrUnsupported, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...any) *BackendError {
	return &BackendError{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

func (e *BackendError) Error() string {
	switch e.Kind {
	case ErrUnsupported:
		return "unsupported backend feature: " + e.Message
	default:
		return "backend error: " + e.Message
	}
}

// Run compiles a single module through b. It exists mainly so callers hold a
// Backend[Output] value rather than a bare function pointer, matching the
// trait-object-shaped call site this is grounded on.
func Run[Output any](b Backend[Output], module ir.Module, options BackendOptions) (Output, error) {
	return b.Compile(module, options)
}
