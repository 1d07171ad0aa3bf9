package rack

import (
	"errors"
	"fmt"
)

// Sentinel errors for the common failure kinds named in the spec's error
// taxonomy. Typed errors below wrap these so callers can use errors.Is
// without caring about the concrete type.
var (
	// ErrSchema is the sentinel for SchemaError: unknown type, duplicate
	// registration, or a bad field spec.
	ErrSchema = errors.New("rack: schema error")

	// ErrField is the sentinel for FieldError: type mismatch, missing
	// required field, or a forbidden fk_/view-name collision.
	ErrField = errors.New("rack: field error")

	// ErrKey is the sentinel for KeyError: key not found on get/delete,
	// or a key/value mismatch on put with an explicit key.
	ErrKey = errors.New("rack: key error")

	// ErrQueryParse is the sentinel for QueryParseError.
	ErrQueryParse = errors.New("rack: query parse error")

	// ErrQueryType is the sentinel for QueryTypeError.
	ErrQueryType = errors.New("rack: query type error")

	// ErrIO is the sentinel for IOError: the underlying KV engine or the
	// zip codec failed.
	ErrIO = errors.New("rack: io error")
)

// SchemaError reports a problem with the schema registry itself: an
// unknown type name, a duplicate registration, or a malformed field spec.
type SchemaError struct {
	Type string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("rack: schema %q: %s", e.Type, e.Msg)
	}
	return fmt.Sprintf("rack: schema: %s", e.Msg)
}

// Is reports whether target is ErrSchema, so errors.Is(err, ErrSchema) works.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NewSchemaError returns a SchemaError for the given type name.
func NewSchemaError(typeName, msg string) *SchemaError {
	return &SchemaError{Type: typeName, Msg: msg}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e) || errors.Is(err, ErrSchema)
}

// FieldError reports a type mismatch, a missing required field, or a
// forbidden fk_X/X view-name collision during encode/decode.
type FieldError struct {
	Type  string
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("rack: field %s.%s: %s", e.Type, e.Field, e.Msg)
}

// Is reports whether target is ErrField.
func (e *FieldError) Is(target error) bool { return target == ErrField }

// NewFieldError returns a FieldError for the given type/field pair.
func NewFieldError(typeName, field, msg string) *FieldError {
	return &FieldError{Type: typeName, Field: field, Msg: msg}
}

// IsFieldError reports whether err is (or wraps) a FieldError.
func IsFieldError(err error) bool {
	if err == nil {
		return false
	}
	var e *FieldError
	return errors.As(err, &e) || errors.Is(err, ErrField)
}

// KeyError reports a key not found on get/delete, or a key/value mismatch
// on put with an explicit key.
type KeyError struct {
	Key string
	Msg string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("rack: key %q: %s", e.Key, e.Msg)
}

// Is reports whether target is ErrKey.
func (e *KeyError) Is(target error) bool { return target == ErrKey }

// NewKeyNotFoundError returns a KeyError for a missing key.
func NewKeyNotFoundError(key string) *KeyError {
	return &KeyError{Key: key, Msg: "not found"}
}

// NewKeyMismatchError returns a KeyError for a put whose value's type/id
// disagrees with the explicit key it was put under.
func NewKeyMismatchError(key, reason string) *KeyError {
	return &KeyError{Key: key, Msg: reason}
}

// IsKeyError reports whether err is (or wraps) a KeyError.
func IsKeyError(err error) bool {
	if err == nil {
		return false
	}
	var e *KeyError
	return errors.As(err, &e) || errors.Is(err, ErrKey)
}

// QueryParseError reports a malformed query string, with the byte offset
// of the failure and the set of token kinds that would have been accepted.
type QueryParseError struct {
	Query    string
	Offset   int
	Expected []string
	Msg      string
}

func (e *QueryParseError) Error() string {
	if len(e.Expected) > 0 {
		return fmt.Sprintf("rack: query parse error at byte %d: %s (expected one of %v)", e.Offset, e.Msg, e.Expected)
	}
	return fmt.Sprintf("rack: query parse error at byte %d: %s", e.Offset, e.Msg)
}

// Is reports whether target is ErrQueryParse.
func (e *QueryParseError) Is(target error) bool { return target == ErrQueryParse }

// NewQueryParseError returns a QueryParseError at the given byte offset.
func NewQueryParseError(query string, offset int, msg string, expected ...string) *QueryParseError {
	return &QueryParseError{Query: query, Offset: offset, Msg: msg, Expected: expected}
}

// IsQueryParseError reports whether err is (or wraps) a QueryParseError.
func IsQueryParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryParseError
	return errors.As(err, &e) || errors.Is(err, ErrQueryParse)
}

// QueryTypeError reports that an operator was applied to operands whose
// resolved types are incompatible with it (e.g. ordering a string against
// a list).
type QueryTypeError struct {
	Op  string
	Msg string
}

func (e *QueryTypeError) Error() string {
	return fmt.Sprintf("rack: query type error: operator %s: %s", e.Op, e.Msg)
}

// Is reports whether target is ErrQueryType.
func (e *QueryTypeError) Is(target error) bool { return target == ErrQueryType }

// NewQueryTypeError returns a QueryTypeError for the given operator.
func NewQueryTypeError(op, msg string) *QueryTypeError {
	return &QueryTypeError{Op: op, Msg: msg}
}

// IsQueryTypeError reports whether err is (or wraps) a QueryTypeError.
func IsQueryTypeError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryTypeError
	return errors.As(err, &e) || errors.Is(err, ErrQueryType)
}

// CycleWarning is a non-fatal diagnostic emitted when foreign-key
// resolution detects and breaks a cycle. It is never returned as an error
// from a successful operation; callers collect it via a diagnostics sink.
type CycleWarning struct {
	Key string
}

func (w *CycleWarning) Error() string {
	return fmt.Sprintf("rack: cycle detected resolving %q, returning empty view", w.Key)
}

// NewCycleWarning returns a CycleWarning for the given in-progress key.
func NewCycleWarning(key string) *CycleWarning {
	return &CycleWarning{Key: key}
}

// IOError wraps a failure from the underlying KV engine or the backup
// zip codec.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("rack: io error during %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError wraps err with the operation that failed.
func NewIOError(op string, err error) *IOError {
	return &IOError{Op: op, Err: err}
}

// IsIOError reports whether err is (or wraps) an IOError.
func IsIOError(err error) bool {
	if err == nil {
		return false
	}
	var e *IOError
	return errors.As(err, &e) || errors.Is(err, ErrIO)
}

// Diagnostic is a non-fatal problem accumulated while evaluating a scan:
// a CycleWarning from FK resolution, or a QueryTypeError from a single
// entry that failed to evaluate (which is treated as a non-match, not a
// scan abort).
type Diagnostic struct {
	Key string
	Err error
}

// Diagnostics is an ordered collection of non-fatal Diagnostic values,
// joined for display the way velox's AggregateError joins multiple errors,
// while remaining individually inspectable.
type Diagnostics []Diagnostic

// Error implements error so Diagnostics can be returned/logged like one,
// while individual entries remain available via range.
func (d Diagnostics) Error() string {
	if len(d) == 0 {
		return "rack: no diagnostics"
	}
	s := fmt.Sprintf("rack: %d diagnostic(s):", len(d))
	for i, diag := range d {
		s += fmt.Sprintf("\n  [%d] %s: %v", i+1, diag.Key, diag.Err)
	}
	return s
}
