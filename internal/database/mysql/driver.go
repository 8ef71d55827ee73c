// Package mysql implements the database driver interfaces on top of
// database/sql and go-sql-driver/mysql.
//
// Each Open pins exactly one physical connection, so session state — the
// selected database, the warning count of the last statement — behaves the
// way a single MySQL session does. Client-side failures (refused
// connection, severed session) are reported with the MySQL client
// library's CR_* error numbers so the classification layer treats them
// uniformly with server errors.
package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/mydb/internal/database"
)

// MySQL client error numbers (CR_*), reported for failures that happen on
// the client side of the wire.
const (
	crConnectionError = 2002 // can't connect through socket
	crConnHostError   = 2003 // can't connect to host
	crServerGone      = 2006 // server has gone away
	crServerLost      = 2013 // lost connection during query
)

// Driver implements database.Driver.
type Driver struct{}

// Open establishes one physical connection per the config.
func (Driver) Open(cfg *database.Config) (database.Conn, error) {
	mc := buildConfig(cfg)
	connector, err := gomysql.NewConnector(mc)
	if err != nil {
		return nil, err
	}

	pool := sql.OpenDB(connector)
	// One pinned connection: this layer's contract is a single session.
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	pool.SetConnMaxLifetime(0)

	viaSocket := cfg.Socket != ""

	ctx := context.Background()
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	conn, err := pool.Conn(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, translate(err, viaSocket)
	}
	return &session{pool: pool, conn: conn, viaSocket: viaSocket}, nil
}

// buildConfig translates the layer's Config into the driver's.
func buildConfig(cfg *database.Config) *gomysql.Config {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database
	if cfg.Socket != "" {
		mc.Net = "unix"
		mc.Addr = cfg.Socket
	} else {
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	mc.Timeout = cfg.ConnectTimeout
	if cfg.Charset != "" {
		// The driver special-cases the charset param into SET NAMES.
		mc.Params = map[string]string{"charset": cfg.Charset}
	}
	// Config.compress is unexported; EnableCompression is the driver's setter
	// for it and never returns an error.
	_ = mc.Apply(gomysql.EnableCompression(cfg.Compress))
	// Permits LOAD DATA LOCAL INFILE from arbitrary client paths.
	mc.AllowAllFiles = cfg.LocalInfile
	return mc
}

// session is one pinned connection.
type session struct {
	pool      *sql.DB
	conn      *sql.Conn
	viaSocket bool
}

func (s *session) Ping() error {
	if err := s.conn.PingContext(context.Background()); err != nil {
		return translate(err, s.viaSocket)
	}
	return nil
}

func (s *session) SelectDatabase(name string) error {
	if _, err := s.conn.ExecContext(context.Background(), useStatement(name)); err != nil {
		return translate(err, s.viaSocket)
	}
	return nil
}

// useStatement quotes name as an identifier, doubling embedded backticks so
// the name cannot break out of the quoting.
func useStatement(name string) string {
	return "USE `" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (s *session) Cursor() (database.Cursor, error) {
	return &cursor{conn: s.conn, viaSocket: s.viaSocket}, nil
}

func (s *session) Close() error {
	err := s.conn.Close()
	if perr := s.pool.Close(); err == nil {
		err = perr
	}
	return err
}

// cursor materializes one statement's result client-side, the way the
// MySQL client library's store-result cursor does.
type cursor struct {
	conn      *sql.Conn
	viaSocket bool
	rows      [][]any
}

func (c *cursor) Execute(stmt string) error {
	rows, err := c.conn.QueryContext(context.Background(), stmt)
	if err != nil {
		return translate(err, c.viaSocket)
	}
	all, err := readAll(rows)
	rows.Close()
	if err != nil {
		return translate(err, c.viaSocket)
	}
	c.rows = all
	return c.checkWarnings()
}

// checkWarnings elevates the statement's diagnostics. SHOW COUNT(*)
// WARNINGS is session-scoped, which the pinned connection guarantees.
func (c *cursor) checkWarnings() error {
	ctx := context.Background()
	var count int
	if err := c.conn.QueryRowContext(ctx, "SHOW COUNT(*) WARNINGS").Scan(&count); err != nil {
		return translate(err, c.viaSocket)
	}
	if count == 0 {
		return nil
	}

	rows, err := c.conn.QueryContext(ctx, "SHOW WARNINGS")
	if err != nil {
		return translate(err, c.viaSocket)
	}
	defer rows.Close()

	var warnings []string
	for rows.Next() {
		var level, message string
		var code int
		if err := rows.Scan(&level, &code, &message); err != nil {
			return translate(err, c.viaSocket)
		}
		warnings = append(warnings, fmt.Sprintf("%s %d: %s", level, code, message))
	}
	if err := rows.Err(); err != nil {
		return translate(err, c.viaSocket)
	}
	return &database.DriverWarning{Warnings: warnings}
}

func (c *cursor) FetchOne() ([]any, error) {
	if len(c.rows) == 0 {
		return nil, nil
	}
	return c.rows[0], nil
}

func (c *cursor) FetchAll() ([][]any, error) {
	return c.rows, nil
}

func (c *cursor) Close() error {
	c.rows = nil
	return nil
}

// readAll drains a result set into positional rows. The text protocol
// hands values back as raw bytes; those become strings.
func readAll(rows *sql.Rows) ([][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var all [][]any
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range dest {
			if b, ok := v.([]byte); ok {
				dest[i] = string(b)
			}
		}
		all = append(all, dest)
	}
	return all, rows.Err()
}

// translate converts driver and network failures into *database.DriverError
// carrying a MySQL error number. Failures outside the anticipated set pass
// through unchanged.
func translate(err error, viaSocket bool) error {
	if err == nil {
		return nil
	}

	var myerr *gomysql.MySQLError
	if errors.As(err, &myerr) {
		return &database.DriverError{Code: myerr.Number, Message: myerr.Message}
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &database.DriverError{Code: crServerLost, Message: err.Error()}
	case errors.Is(err, gomysql.ErrInvalidConn), errors.Is(err, driver.ErrBadConn):
		return &database.DriverError{Code: crServerGone, Message: err.Error()}
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		code := uint16(crConnHostError)
		if viaSocket {
			code = crConnectionError
		}
		return &database.DriverError{Code: code, Message: err.Error()}
	}

	return err
}
