package database

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/koustreak/mydb/internal/errs"
)

// mysqlClient is the external client executable used for bulk script
// loading. Tests substitute a stand-in.
var mysqlClient = "mysql"

// LoadSqlScript feeds the SQL script at scriptPath to the mysql client
// process, loading it server-side into dbName (or the config's default
// database when empty). A non-zero exit maps to KindCantExecScript.
func (db *Db) LoadSqlScript(scriptPath, dbName string) error {
	f, err := os.Open(scriptPath)
	if err != nil {
		return errs.Wrap(errs.KindCantExecScript,
			fmt.Sprintf("cannot open script %q", scriptPath), err)
	}
	defer f.Close()

	args := db.clientArgs(dbName)
	db.log.Infof("loading script %s, args: %v", scriptPath, args)

	cmd := exec.Command(mysqlClient, args...)
	cmd.Stdin = f
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("failed to execute %s < %s", mysqlClient, scriptPath)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += ": " + s
		}
		return errs.Wrap(errs.KindCantExecScript, msg, err)
	}
	return nil
}

// clientArgs translates the connection config into the mysql executable's
// own flag names. The defaults-file handling mirrors the driver: when no
// options file is configured, --no-defaults keeps the client from reading
// /etc/my.cnf and friends. Either flag has to come first, or the client
// rejects it as an unknown option.
func (db *Db) clientArgs(dbName string) []string {
	cfg := &db.cfg

	var args []string
	if cfg.OptionsFile != "" {
		args = append(args, "--defaults-file="+cfg.OptionsFile)
	} else {
		args = append(args, "--no-defaults")
	}

	if cfg.Host != "" {
		args = append(args, "--host="+cfg.Host)
		if cfg.Port != 0 {
			args = append(args, fmt.Sprintf("--port=%d", cfg.Port))
		}
	}
	if cfg.Socket != "" {
		args = append(args, "--socket="+cfg.Socket)
	}
	if cfg.User != "" {
		args = append(args, "--user="+cfg.User)
	}
	if cfg.Password != "" {
		args = append(args, "--password="+cfg.Password)
	}
	if cfg.ConnectTimeout > 0 {
		args = append(args, fmt.Sprintf("--connect_timeout=%d", int(cfg.ConnectTimeout.Seconds())))
	}
	if cfg.Compress {
		args = append(args, "--compress")
	}
	if cfg.Charset != "" {
		args = append(args, "--default-character-set="+cfg.Charset)
	}
	if cfg.LocalInfile {
		args = append(args, "--local-infile=1")
	}

	if dbName == "" {
		dbName = cfg.Database
	}
	if dbName != "" {
		args = append(args, "--database="+dbName)
	}
	return args
}
