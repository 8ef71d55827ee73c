package mysql

import (
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/mydb/internal/database"
)

func TestBuildConfigTCP(t *testing.T) {
	mc := buildConfig(&database.Config{
		Host:           "db.example.com",
		Port:           3307,
		User:           "alice",
		Password:       "s3cret",
		Database:       "produce",
		Charset:        "utf8mb4",
		Compress:       true,
		LocalInfile:    true,
		ConnectTimeout: 5 * time.Second,
	})

	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "db.example.com:3307", mc.Addr)
	assert.Equal(t, "alice", mc.User)
	assert.Equal(t, "s3cret", mc.Passwd)
	assert.Equal(t, "produce", mc.DBName)
	assert.Equal(t, "utf8mb4", mc.Params["charset"])
	// Config.compress is unexported; FormatDSN emits compress=true iff set.
	assert.Contains(t, mc.FormatDSN(), "compress=true")
	assert.True(t, mc.AllowAllFiles)
	assert.Equal(t, 5*time.Second, mc.Timeout)
}

func TestBuildConfigSocket(t *testing.T) {
	mc := buildConfig(&database.Config{
		Socket: "/var/run/mysqld/mysqld.sock",
		User:   "alice",
	})

	assert.Equal(t, "unix", mc.Net)
	assert.Equal(t, "/var/run/mysqld/mysqld.sock", mc.Addr)
}

func TestUseStatementQuotesIdentifier(t *testing.T) {
	assert.Equal(t, "USE `produce`", useStatement("produce"))
	assert.Equal(t, "USE `we``ird`", useStatement("we`ird"))
}

func TestTranslateServerError(t *testing.T) {
	err := translate(&gomysql.MySQLError{Number: 1049, Message: "Unknown database 'nope'"}, false)

	var derr *database.DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, uint16(1049), derr.Code)
	assert.Equal(t, "Unknown database 'nope'", derr.Message)
}

func TestTranslateClientSideFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		viaSocket bool
		wantCode  uint16
	}{
		{name: "eof is lost connection", err: io.EOF, wantCode: 2013},
		{name: "unexpected eof is lost connection", err: io.ErrUnexpectedEOF, wantCode: 2013},
		{name: "invalid conn is server gone", err: gomysql.ErrInvalidConn, wantCode: 2006},
		{name: "bad conn is server gone", err: driver.ErrBadConn, wantCode: 2006},
		{
			name:     "net error over tcp",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			wantCode: 2003,
		},
		{
			name:      "net error over socket",
			err:       &net.OpError{Op: "dial", Net: "unix", Err: errors.New("no such file")},
			viaSocket: true,
			wantCode:  2002,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, tt.viaSocket)

			var derr *database.DriverError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantCode, derr.Code)
		})
	}
}

func TestTranslatePassesThroughUnknownErrors(t *testing.T) {
	sentinel := errors.New("not a database problem")
	assert.Same(t, sentinel, translate(sentinel, false))

	assert.NoError(t, translate(nil, false))
}

func TestDriverErrorMessage(t *testing.T) {
	err := &database.DriverError{Code: 2003, Message: "Can't connect to MySQL server"}
	assert.Equal(t, "MySQL error 2003: Can't connect to MySQL server", err.Error())
}
