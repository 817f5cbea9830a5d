package config

import (
	"errors"
	"fmt"
)

// Kind classifies startup failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfigMissing: a required environment variable is absent or empty.
	KindConfigMissing
	// KindFileNotFound: the declared model path does not reference a file.
	KindFileNotFound
	// KindParse: a numeric variable is not a valid integer.
	KindParse
	// KindRange: a numeric variable is <= 0.
	KindRange
	// KindConstruction: settings or application construction failed, even after fallback.
	KindConstruction
)

func (k Kind) String() string {
	switch k {
	case KindConfigMissing:
		return "config missing"
	case KindFileNotFound:
		return "file not found"
	case KindParse:
		return "parse error"
	case KindRange:
		return "range error"
	case KindConstruction:
		return "construction error"
	default:
		return "unknown"
	}
}

// Error is a startup error carrying its Kind and, where relevant, the
// offending variable and raw value.
type Error struct {
	Kind  Kind
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfigMissing:
		return fmt.Sprintf("%s: environment variable %s is not set", e.Kind, e.Key)
	case KindFileNotFound:
		return fmt.Sprintf("%s: model file %q does not exist", e.Kind, e.Value)
	case KindParse:
		return fmt.Sprintf("%s: %s=%q is not a valid integer", e.Kind, e.Key, e.Value)
	case KindRange:
		return fmt.Sprintf("%s: %s must be positive and fit in an int, got %s", e.Kind, e.Key, e.Value)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Construction wraps err as a KindConstruction error.
func Construction(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindConstruction, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsConfigMissing reports whether err is a KindConfigMissing error.
func IsConfigMissing(err error) bool { return KindOf(err) == KindConfigMissing }

// IsFileNotFound reports whether err is a KindFileNotFound error.
func IsFileNotFound(err error) bool { return KindOf(err) == KindFileNotFound }

// IsParse reports whether err is a KindParse error.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsRange reports whether err is a KindRange error.
func IsRange(err error) bool { return KindOf(err) == KindRange }

// IsConstruction reports whether err is a KindConstruction error.
func IsConstruction(err error) bool { return KindOf(err) == KindConstruction }
