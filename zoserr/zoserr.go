// Package zoserr defines the engine's error taxonomy. Engine failures are
// *Error values built with New, carrying a Kind and an optional cause, so
// that callers can recover the Kind with KindOf (or match it with
// errors.Is against the Err* sentinels) while still seeing a
// human-readable message.
package zoserr

import "errors"

// Kind classifies an engine failure the way the shell's taxonomy-to-string
// table expects.
type Kind int

const (
	// OK is never actually returned as an error; it exists so Kind has a
	// defined zero value distinct from the other kinds.
	OK Kind = iota
	FileNotFound
	PathNotFound
	Exists
	NotEmpty
	CannotCreateFile
	CmdNotFound
	InvalidArgs
	NotFormatted
	OutOfSpace
	IO
	NotDirectory
	TooLarge
	PartialWrite
)

func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "FILE NOT FOUND"
	case PathNotFound:
		return "PATH NOT FOUND"
	case Exists:
		return "EXIST"
	case NotEmpty:
		return "NOT EMPTY"
	case CannotCreateFile:
		return "CANNOT CREATE FILE"
	case CmdNotFound:
		return "Invalid command!"
	case InvalidArgs:
		return "Invalid amount of arguments!"
	case NotFormatted:
		return "You must format the disk first!"
	case OutOfSpace:
		return "OUT OF SPACE"
	case IO:
		return "IO ERROR"
	case NotDirectory:
		return "NOT A DIRECTORY"
	case TooLarge:
		return "FILE TOO LARGE"
	case PartialWrite:
		return "PARTIAL WRITE"
	default:
		return "UNKNOWN"
	}
}

// Error wraps a Kind with the operation-specific detail that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, zoserr.ErrFileNotFound) work by comparing Kind against
// the sentinels below, since Kind is an int and not itself an error.
func (e *Error) Is(target error) bool {
	var s *sentinel
	if errors.As(target, &s) {
		return e.Kind == s.kind
	}
	return false
}

// New constructs an *Error for the given kind/operation, optionally wrapping
// a lower-level cause (e.g. an *os.PathError from the backing file).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// sentinel lets call sites write errors.Is(err, zoserr.ErrFileNotFound)
// without constructing a full *Error.
type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

var (
	ErrFileNotFound     error = &sentinel{FileNotFound}
	ErrPathNotFound     error = &sentinel{PathNotFound}
	ErrExists           error = &sentinel{Exists}
	ErrNotEmpty         error = &sentinel{NotEmpty}
	ErrCannotCreateFile error = &sentinel{CannotCreateFile}
	ErrCmdNotFound      error = &sentinel{CmdNotFound}
	ErrInvalidArgs      error = &sentinel{InvalidArgs}
	ErrNotFormatted     error = &sentinel{NotFormatted}
	ErrOutOfSpace       error = &sentinel{OutOfSpace}
	ErrIO               error = &sentinel{IO}
	ErrNotDirectory     error = &sentinel{NotDirectory}
	ErrTooLarge         error = &sentinel{TooLarge}
	ErrPartialWrite     error = &sentinel{PartialWrite}
)

// KindOf extracts the Kind from err, if any of err's chain is a *Error or a
// sentinel from this package. Returns (kind, true) on a match.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var s *sentinel
	if errors.As(err, &s) {
		return s.kind, true
	}
	return OK, false
}
