// Package database is a resilient access layer for a MySQL server.
//
// It owns a single logical connection, reconnects with a bounded retry
// policy when the server is unreachable, and translates every driver
// failure into the stable error taxonomy of the errs package. Schema
// management helpers (create/drop database and table, existence checks)
// and raw statement execution with three result-arity contracts are built
// on top.
//
// A Db is not safe for concurrent use: it owns one session and one cursor
// at a time. Callers needing parallelism run one Db per goroutine, or go
// through a Pool.
package database

import (
	"errors"
	"time"

	"github.com/koustreak/mydb/internal/errs"
	"github.com/koustreak/mydb/internal/logger"
)

// Db wraps one logical MySQL connection. Public operations establish the
// connection on demand; callers never have to call Connect first.
type Db struct {
	cfg  Config
	drv  Driver
	conn Conn
	log  *logger.Logger

	// sleep is swapped out in tests to observe retry gaps without waiting.
	sleep func(time.Duration)
}

// New creates a Db from cfg. The config is copied, normalized ("localhost"
// becomes 127.0.0.1, defaults filled in) and validated; it is immutable
// afterwards. No connection is made yet. A nil log discards all output.
func New(cfg *Config, drv Driver, log *logger.Logger) (*Db, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := *cfg
	if c.OptionsFile != "" {
		c.OptionsFile = expandHome(c.OptionsFile)
		if err := mergeOptionsFile(&c); err != nil {
			return nil, err
		}
	}
	if c.Host == "localhost" {
		log.Warn(`"localhost" specified, switching to 127.0.0.1`)
	}
	c.normalize()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &Db{cfg: c, drv: drv, log: log, sleep: time.Sleep}, nil
}

// Config returns a copy of the effective (normalized) configuration.
func (db *Db) Config() Config {
	return db.cfg
}

// IsConnected reports whether a live session exists. An existing handle is
// probed with a ping; if the probe fails with a connectivity-class error
// the stale handle is closed (best effort, releasing the driver's
// resources) and dropped, and false is returned. Any other probe failure
// is surfaced as an error.
func (db *Db) IsConnected() (bool, error) {
	if db.conn == nil {
		return false, nil
	}
	db.log.Debug("pinging server")
	if err := db.conn.Ping(); err != nil {
		var derr *DriverError
		if errors.As(err, &derr) && isConnectionCode(derr.Code) {
			db.log.Debugf("ping failed with error %d: %s", derr.Code, derr.Message)
			if cerr := db.conn.Close(); cerr != nil {
				db.log.Debugf("close failed: %v", cerr)
			}
			db.conn = nil
			return false, nil
		}
		return false, db.translate(err)
	}
	return true, nil
}

// Connect establishes the connection if there is none, retrying per the
// configured policy. If dbName is non-empty the session's default database
// is switched to it; a failed switch surfaces as a classified error
// (DbDoesNotExist for an unknown database) and leaves the session intact.
func (db *Db) Connect(dbName string) error {
	ok, err := db.IsConnected()
	if err != nil {
		return err
	}
	if !ok {
		if err := db.doConnect(); err != nil {
			return err
		}
	}
	if dbName != "" {
		db.log.Infof("selecting db %s", dbName)
		if err := db.conn.SelectDatabase(dbName); err != nil {
			return db.translate(err)
		}
	}
	return nil
}

// doConnect runs the retry loop. Only connectivity-class failures are
// retried; anything else, or running out of attempts, raises immediately.
func (db *Db) doConnect() error {
	for attempt := 1; ; attempt++ {
		db.log.Infof("connecting (attempt %d of %d)", attempt, db.cfg.MaxAttempts)
		conn, err := db.drv.Open(&db.cfg)
		if err == nil {
			db.conn = conn
			return nil
		}

		var derr *DriverError
		if !errors.As(err, &derr) {
			// Not a failure the driver anticipates; re-raise verbatim.
			return err
		}
		db.log.Errorf("connect failed: %v", derr)
		if attempt >= db.cfg.MaxAttempts || !isConnectionCode(derr.Code) {
			return errs.Wrap(classify(derr.Code), derr.Error(), derr)
		}
		if db.cfg.SleepBetween > 0 {
			db.sleep(db.cfg.SleepBetween)
		}
	}
}

// Disconnect closes the session. Close errors are swallowed: the contract
// is "connection is gone", not "close succeeded cleanly". Idempotent.
func (db *Db) Disconnect() {
	db.log.Info("closing connection")
	if db.conn == nil {
		return
	}
	if err := db.conn.Close(); err != nil {
		db.log.Debugf("close failed: %v", err)
	}
	db.conn = nil
}

// translate converts a driver-level failure into the domain taxonomy.
// Errors carry their MySQL code through the static classifier; warnings
// elevate to KindServerWarning. Anything else is not an anticipated
// failure and passes through verbatim.
func (db *Db) translate(err error) error {
	var derr *DriverError
	if errors.As(err, &derr) {
		db.log.Errorf("%v", derr)
		return errs.Wrap(classify(derr.Code), derr.Error(), derr)
	}
	var warn *DriverWarning
	if errors.As(err, &warn) {
		db.log.Errorf("%v", warn)
		return errs.Wrap(errs.KindServerWarning, warn.Error(), warn)
	}
	db.log.ErrorWith("unexpected error", err)
	return err
}

// Exec runs a statement that returns no rows, discarding any result.
func (db *Db) Exec(stmt string) error {
	_, _, err := db.exec(stmt, arityNone)
	return err
}

// QueryRow runs a statement and returns its first row of column values,
// or nil if the statement produced no rows.
func (db *Db) QueryRow(stmt string) ([]any, error) {
	row, _, err := db.exec(stmt, arityOne)
	return row, err
}

// Query runs a statement and returns every result row, in server order.
func (db *Db) Query(stmt string) ([][]any, error) {
	_, rows, err := db.exec(stmt, arityMany)
	return rows, err
}

type resultArity int

const (
	arityNone resultArity = iota
	arityOne
	arityMany
)

// exec runs one statement over a scoped cursor. The connection is
// established on demand (with no target database); a connection lost
// mid-statement is surfaced, never retried, since a partially executed
// statement has undefined resumability.
func (db *Db) exec(stmt string, arity resultArity) ([]any, [][]any, error) {
	if db.conn == nil {
		if err := db.Connect(""); err != nil {
			return nil, nil, err
		}
	}
	cur, err := db.conn.Cursor()
	if err != nil {
		return nil, nil, db.translate(err)
	}
	defer cur.Close()

	db.log.Debugf("executing %q", stmt)
	if err := cur.Execute(stmt); err != nil {
		terr := db.translate(err)
		var e *errs.Error
		if errors.As(terr, &e) {
			e.Messages = append(e.Messages, stmt)
		}
		return nil, nil, terr
	}

	switch arity {
	case arityOne:
		row, err := cur.FetchOne()
		if err != nil {
			return nil, nil, db.translate(err)
		}
		return row, nil, nil
	case arityMany:
		rows, err := cur.FetchAll()
		if err != nil {
			return nil, nil, db.translate(err)
		}
		return nil, rows, nil
	default:
		return nil, nil, nil
	}
}
