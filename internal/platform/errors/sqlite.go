package errors

// SQLite classification for modernc.org/sqlite errors

import (
	stderrs "errors"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ExtractSQLiteError returns the *sqlite.Error anywhere in the chain
func ExtractSQLiteError(err error) (*msqlite.Error, bool) {
	var se *msqlite.Error
	if stderrs.As(err, &se) {
		return se, true
	}
	return nil, false
}

// sqliteCode maps an extended sqlite result code to an ErrorCode; ok is false for non sqlite errors
func sqliteCode(err error) (ErrorCode, bool) {
	se, ok := ExtractSQLiteError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch se.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return ErrorCodeDuplicateKey, true
	case sqlite3lib.SQLITE_CONSTRAINT_NOTNULL, sqlite3lib.SQLITE_CONSTRAINT_CHECK:
		return ErrorCodeValidation, true
	case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED, sqlite3lib.SQLITE_READONLY:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}
