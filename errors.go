package ephemeris

import (
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/ls-ephemeris/internal/sefile"
)

// Kind classifies computation failures.
type Kind int

const (
	// KindCorrupt means an ephemeris file failed structural validation.
	// The file is rejected, dependent cached state is cleared, and the
	// load is never retried automatically.
	KindCorrupt Kind = iota + 1

	// KindNotAvailable means no source could supply the requested body
	// and time. It is reported only after every tier has been tried.
	KindNotAvailable

	// KindInvalidArgument means the request itself is malformed, for
	// example an unsupported body number or a geocentric Earth position.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindCorrupt:
		return "corrupt"
	case KindNotAvailable:
		return "not available"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is the error type returned by position computations. Trail holds
// the accumulated tier-fallback diagnostics in the order the tiers were
// abandoned.
type Error struct {
	Kind  Kind
	Msg   string
	Trail []string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for _, w := range e.Trail {
		b.WriteString("; ")
		b.WriteString(w)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind reports the Kind carried by err, or 0 when err is not an
// ephemeris error.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalidArg(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// classify maps file-layer sentinel errors onto the taxonomy. Corrupt
// files abort immediately; range and absence errors are recoverable.
func classify(err error) Kind {
	switch {
	case errors.Is(err, sefile.ErrCorrupt):
		return KindCorrupt
	case errors.Is(err, sefile.ErrOutOfRange), errors.Is(err, sefile.ErrBodyAbsent):
		return KindNotAvailable
	default:
		return KindCorrupt
	}
}
