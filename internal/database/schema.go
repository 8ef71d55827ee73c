package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/mydb/internal/errs"
)

// Schema management helpers. Each is a thin statement template over the
// executor; operations with a mayExist/mustExist toggle swallow exactly
// the "already exists" / "does not exist" kind when the toggle permits.

// CreateDb creates database name. With mayExist, an already existing
// database is not an error. The new database is not selected.
func (db *Db) CreateDb(name string, mayExist bool) error {
	if name == "" {
		return errs.New(errs.KindInvalidDbName, "<empty>")
	}
	err := db.Exec("CREATE DATABASE " + quoteIdent(name))
	if err != nil && mayExist && errs.IsDbExists(err) {
		db.log.Debugf("create db %s failed, mayExist is true", name)
		return nil
	}
	return err
}

// DropDb drops database name. With mustExist false, a missing database is
// not an error.
func (db *Db) DropDb(name string, mustExist bool) error {
	err := db.Exec("DROP DATABASE " + quoteIdent(name))
	if err != nil && !mustExist && errs.IsDbDoesNotExist(err) {
		db.log.Debugf("drop db %s failed, mustExist is false", name)
		return nil
	}
	return err
}

// UseDb switches the session's default database to name.
func (db *Db) UseDb(name string) error {
	if name == "" {
		return nil
	}
	return db.Connect(name)
}

// DbExists reports whether database name exists.
func (db *Db) DbExists(name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	row, err := db.QueryRow(
		"SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = " +
			quoteString(name))
	if err != nil {
		return false, err
	}
	return rowCount(row) == 1, nil
}

// CreateTable creates table name with the given column definition (starting
// with the opening parenthesis) in dbName, or in the currently selected
// database when dbName is empty. With mayExist, an existing table is not an
// error.
func (db *Db) CreateTable(name, tableSchema, dbName string, mayExist bool) error {
	err := db.Exec(fmt.Sprintf("CREATE TABLE %s%s %s",
		tablePrefix(dbName), quoteIdent(name), tableSchema))
	if err != nil && mayExist && errs.IsTableExists(err) {
		db.log.Debugf("create table %s failed, mayExist is true", name)
		return nil
	}
	return err
}

// DropTable drops table name from dbName, or from the currently selected
// database when dbName is empty. With mustExist false, a missing table is
// not an error.
func (db *Db) DropTable(name, dbName string, mustExist bool) error {
	err := db.Exec(fmt.Sprintf("DROP TABLE %s%s", tablePrefix(dbName), quoteIdent(name)))
	if err != nil && !mustExist && errs.IsTableDoesNotExist(err) {
		db.log.Debugf("drop table %s failed, mustExist is false", name)
		return nil
	}
	return err
}

// TableExists reports whether table name exists in dbName, or in the
// currently selected database when dbName is empty. With no database
// selected the scope is empty, so the answer is false, not an error.
func (db *Db) TableExists(name, dbName string) (bool, error) {
	row, err := db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM information_schema.tables "+
			"WHERE table_schema = %s AND table_name = %s",
		schemaScope(dbName), quoteString(name)))
	if err != nil {
		return false, err
	}
	return rowCount(row) == 1, nil
}

// IsView reports whether name is a view in dbName, or in the currently
// selected database when dbName is empty.
func (db *Db) IsView(name, dbName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf(
		"SELECT table_type FROM information_schema.tables "+
			"WHERE table_schema = %s AND table_name = %s",
		schemaScope(dbName), quoteString(name)))
	if err != nil {
		return false, err
	}
	return len(rows) == 1 && len(rows[0]) == 1 && asString(rows[0][0]) == "VIEW", nil
}

// UserExists reports whether the account user@host exists on the server.
func (db *Db) UserExists(user, host string) (bool, error) {
	row, err := db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM mysql.user WHERE user = %s AND host = %s",
		quoteString(user), quoteString(host)))
	if err != nil {
		return false, err
	}
	return rowCount(row) != 0, nil
}

// TableContent returns a human-readable dump of the table, one row per
// line. Intended for debugging and test helpers, not bulk export.
func (db *Db) TableContent(name, dbName string) (string, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s%s",
		tablePrefix(dbName), quoteIdent(name)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(name)
	if len(rows) == 0 {
		b.WriteString(" is empty.\n")
		return b.String(), nil
	}
	b.WriteString(":\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "    %v\n", r)
	}
	return b.String(), nil
}

// tablePrefix renders the "`db`." qualifier, or nothing for the currently
// selected database.
func tablePrefix(dbName string) string {
	if dbName == "" {
		return ""
	}
	return quoteIdent(dbName) + "."
}

// schemaScope renders the table_schema comparand: the literal database
// name when given, otherwise DATABASE() so the check follows the session's
// current selection (and yields "not found" when none is selected).
func schemaScope(dbName string) string {
	if dbName == "" {
		return "DATABASE()"
	}
	return quoteString(dbName)
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
