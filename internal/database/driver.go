package database

import "fmt"

// Driver opens physical connections to a MySQL server. The production
// implementation lives in the mysql subpackage; tests substitute fakes.
type Driver interface {
	// Open establishes a single physical connection using cfg.
	// Failures reported by the server or the network layer are returned
	// as *DriverError.
	Open(cfg *Config) (Conn, error)
}

// Conn is one live session with the server. It is not safe for concurrent
// use; the Db that owns it serializes all access.
type Conn interface {
	// Ping issues a lightweight round-trip to detect a dropped session.
	Ping() error

	// SelectDatabase makes name the session's default database.
	SelectDatabase(name string) error

	// Cursor opens a scoped result handle for one statement.
	Cursor() (Cursor, error)

	// Close tears down the session.
	Close() error
}

// Cursor executes a single statement and exposes its result rows.
// Callers must always Close it, on every exit path.
type Cursor interface {
	// Execute runs the statement. Server warnings are reported as
	// *DriverWarning; server errors as *DriverError.
	Execute(stmt string) error

	// FetchOne returns the first result row, or nil if there is none.
	FetchOne() ([]any, error)

	// FetchAll returns every result row in server order.
	FetchAll() ([][]any, error)

	// Close releases the result handle.
	Close() error
}

// DriverError is a failure reported by the server or the client library,
// carrying the MySQL numeric error code.
type DriverError struct {
	Code    uint16
	Message string
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("MySQL error %d: %s", e.Code, e.Message)
}

// DriverWarning carries the diagnostics a statement produced. The executor
// elevates it to an error: warnings never pass silently.
type DriverWarning struct {
	Warnings []string
}

func (w *DriverWarning) Error() string {
	if len(w.Warnings) == 0 {
		return "MySQL warning"
	}
	return "MySQL warning: " + w.Warnings[0]
}
