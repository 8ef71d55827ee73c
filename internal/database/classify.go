package database

import "github.com/koustreak/mydb/internal/errs"

// MySQL error numbers this layer is sensitive to.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDbCreateExists = 1007 // ER_DB_CREATE_EXISTS
	errDbDropExists   = 1008 // ER_DB_DROP_EXISTS
	errNoDbSelected   = 1046 // ER_NO_DB_ERROR
	errBadDb          = 1049 // ER_BAD_DB_ERROR
	errTableExists    = 1050 // ER_TABLE_EXISTS_ERROR
	errBadTable       = 1051 // ER_BAD_TABLE_ERROR
	errConnSocket     = 2002 // CR_CONNECTION_ERROR
	errConnHost       = 2003 // CR_CONN_HOST_ERROR
	errServerGone     = 2006 // CR_SERVER_GONE_ERROR
	errServerLost     = 2013 // CR_SERVER_LOST
)

// errorCodeMap maps MySQL error numbers to error kinds. The codes that map
// to KindServerConnect are recoverable by reconnecting; everything absent
// from the map classifies as KindServerError.
var errorCodeMap = map[uint16]errs.Kind{
	errDbCreateExists: errs.KindDbExists,
	errDbDropExists:   errs.KindDbDoesNotExist,
	errNoDbSelected:   errs.KindNoDbSelected,
	errBadDb:          errs.KindDbDoesNotExist,
	errTableExists:    errs.KindTableExists,
	errBadTable:       errs.KindTableDoesNotExist,
	errConnSocket:     errs.KindServerConnect,
	errConnHost:       errs.KindServerConnect,
	errServerGone:     errs.KindServerConnect,
	errServerLost:     errs.KindServerConnect,
}

// classify maps a MySQL error number to its error kind.
func classify(code uint16) errs.Kind {
	if kind, ok := errorCodeMap[code]; ok {
		return kind
	}
	return errs.KindServerError
}

// isConnectionCode reports whether the code signals a connectivity failure,
// the only class of failure worth retrying.
func isConnectionCode(code uint16) bool {
	return classify(code) == errs.KindServerConnect
}
