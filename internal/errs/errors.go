// Package errs provides the unified error type used across all of mydb.
//
// The database layer never leaks driver-level errors: every MySQL error or
// warning is translated into *errs.Error before crossing the package
// boundary. Callers branch on the error kind, never on message text.
//
// Usage:
//
//	// In the database layer — wrap a classified failure:
//	return errs.Wrap(errs.KindServerConnect, "MySQL error 2003: ...", cause)
//
//	// In a caller — check the error kind:
//	if errs.Is(err, errs.KindDbExists) {
//	    // database was already there
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a stable error category decoupled from MySQL's numeric error
// codes. The database layer maps every driver error to one of these kinds.
type Kind int

const (
	KindInternal Kind = iota
	KindCantConnect
	KindCantExecScript
	KindDbExists
	KindDbDoesNotExist
	KindInvalidConnInfo
	KindInvalidDbName
	KindInvalidOptionFile
	KindServerConnect // unreachable host, refused or severed connection; retryable
	KindServerDisconnect
	KindServerError
	KindNoDbSelected
	KindNotConnected
	KindTableDoesNotExist
	KindTableExists
	KindServerWarning // statement produced a server warning, elevated to an error
)

func (k Kind) String() string {
	switch k {
	case KindCantConnect:
		return "cant_connect"
	case KindCantExecScript:
		return "cant_exec_script"
	case KindDbExists:
		return "db_exists"
	case KindDbDoesNotExist:
		return "db_does_not_exist"
	case KindInvalidConnInfo:
		return "invalid_conn_info"
	case KindInvalidDbName:
		return "invalid_db_name"
	case KindInvalidOptionFile:
		return "invalid_option_file"
	case KindServerConnect:
		return "server_connect"
	case KindServerDisconnect:
		return "server_disconnect"
	case KindServerError:
		return "server_error"
	case KindNoDbSelected:
		return "no_db_selected"
	case KindNotConnected:
		return "not_connected"
	case KindTableDoesNotExist:
		return "table_does_not_exist"
	case KindTableExists:
		return "table_exists"
	case KindServerWarning:
		return "server_warning"
	default:
		return "internal"
	}
}

// Message returns the fixed human-readable description of the kind.
func (k Kind) Message() string {
	switch k {
	case KindCantConnect:
		return "Can't connect to database."
	case KindCantExecScript:
		return "Can't execute script."
	case KindDbExists:
		return "Database already exists."
	case KindDbDoesNotExist:
		return "Database does not exist."
	case KindInvalidConnInfo:
		return "Invalid connection parameter."
	case KindInvalidDbName:
		return "Invalid database name."
	case KindInvalidOptionFile:
		return "Can't open the option file."
	case KindServerConnect:
		return "Unable to connect to the database server."
	case KindServerDisconnect:
		return "Failed to disconnect from the database server."
	case KindServerError:
		return "Internal database server error."
	case KindNoDbSelected:
		return "No database selected."
	case KindNotConnected:
		return "Not connected to the database server."
	case KindTableDoesNotExist:
		return "Table does not exist."
	case KindTableExists:
		return "Table already exists."
	case KindServerWarning:
		return "Warning."
	default:
		return "Internal error."
	}
}

// Error is the single error type returned by the database layer.
// It carries a stable Kind plus free-form ancillary messages (the failing
// statement, the underlying driver message) and the original cause.
type Error struct {
	Kind     Kind
	Messages []string
	Cause    error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	msg := e.Kind.Message()
	if len(e.Messages) > 0 {
		msg += " (" + strings.Join(e.Messages, "), (") + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and optional ancillary messages.
func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

// Wrap creates an *Error with the given kind, an ancillary message, and an
// underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Messages: []string{msg}, Cause: cause}
}

// --- Predicates ---

// Is reports whether any error in err's chain is an *Error of the given
// kind. A foreign error never matches, not even for KindInternal.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsServerConnect reports whether err is a retryable connectivity failure
// (unreachable host, refused connection, severed session).
func IsServerConnect(err error) bool {
	return KindOf(err) == KindServerConnect
}

// IsDbExists reports whether err means the database already exists.
func IsDbExists(err error) bool {
	return KindOf(err) == KindDbExists
}

// IsDbDoesNotExist reports whether err means the database does not exist.
func IsDbDoesNotExist(err error) bool {
	return KindOf(err) == KindDbDoesNotExist
}

// IsTableExists reports whether err means the table already exists.
func IsTableExists(err error) bool {
	return KindOf(err) == KindTableExists
}

// IsTableDoesNotExist reports whether err means the table does not exist.
func IsTableDoesNotExist(err error) bool {
	return KindOf(err) == KindTableDoesNotExist
}

// IsServerWarning reports whether err is a server warning elevated to an error.
func IsServerWarning(err error) bool {
	return KindOf(err) == KindServerWarning
}

// KindOf extracts the Kind from any error in the chain. Errors with no
// *Error in the chain report KindInternal; use Is to distinguish a real
// KindInternal from a foreign error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
