package database

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/mydb/internal/errs"
)

func TestClientArgs(t *testing.T) {
	db := newTestDb(t, &Config{
		Host:           "db.example.com",
		Port:           3307,
		User:           "alice",
		Password:       "s3cret",
		Database:       "produce",
		Charset:        "utf8mb4",
		Compress:       true,
		LocalInfile:    true,
		ConnectTimeout: 5 * time.Second,
	}, &fakeDriver{})

	args := db.clientArgs("")
	assert.Equal(t, []string{
		"--no-defaults",
		"--host=db.example.com",
		"--port=3307",
		"--user=alice",
		"--password=s3cret",
		"--connect_timeout=5",
		"--compress",
		"--default-character-set=utf8mb4",
		"--local-infile=1",
		"--database=produce",
	}, args)
}

func TestClientArgsExplicitDatabaseWins(t *testing.T) {
	db := newTestDb(t, &Config{Host: "db.example.com", Database: "produce"}, &fakeDriver{})

	args := db.clientArgs("inventory")
	assert.Contains(t, args, "--database=inventory")
	assert.NotContains(t, args, "--database=produce")
}

func TestClientArgsSocket(t *testing.T) {
	db := newTestDb(t, &Config{Socket: "/tmp/mysql.sock"}, &fakeDriver{})

	args := db.clientArgs("")
	assert.Equal(t, []string{"--no-defaults", "--socket=/tmp/mysql.sock"}, args)
}

func TestClientArgsDefaultsFileComesFirst(t *testing.T) {
	cnf := writeFile(t, "my.cnf", "[mysql]\nhost = filehost.example.com\n")
	db := newTestDb(t, &Config{OptionsFile: cnf}, &fakeDriver{})

	args := db.clientArgs("")
	require.NotEmpty(t, args)
	assert.Equal(t, "--defaults-file="+cnf, args[0])
	assert.NotContains(t, args, "--no-defaults")
}

func TestLoadSqlScript(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no 'true' executable available")
	}

	db := newTestDb(t, &Config{Host: "db.example.com"}, &fakeDriver{})
	script := writeFile(t, "schema.sql", "CREATE TABLE t1 (i INT);\n")

	orig := mysqlClient
	defer func() { mysqlClient = orig }()

	mysqlClient = "true"
	require.NoError(t, db.LoadSqlScript(script, "produce"))
}

func TestLoadSqlScriptClientFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("no 'false' executable available")
	}

	db := newTestDb(t, &Config{Host: "db.example.com"}, &fakeDriver{})
	script := writeFile(t, "schema.sql", "CREATE TABLE t1 (i INT);\n")

	orig := mysqlClient
	defer func() { mysqlClient = orig }()

	mysqlClient = "false"
	err := db.LoadSqlScript(script, "")
	require.Error(t, err)
	assert.Equal(t, errs.KindCantExecScript, errs.KindOf(err))
}

func TestLoadSqlScriptMissingScript(t *testing.T) {
	db := newTestDb(t, &Config{Host: "db.example.com"}, &fakeDriver{})

	err := db.LoadSqlScript("/does/not/exist.sql", "")
	require.Error(t, err)
	assert.Equal(t, errs.KindCantExecScript, errs.KindOf(err))
}
