package errors

import "fmt"

// DBErrorCode classifies a driver error from either supported backend
// ok is false when err came from neither
func DBErrorCode(err error) (ErrorCode, bool) {
	if c, ok := pgCode(err); ok {
		return c, true
	}
	return sqliteCode(err)
}

// IsDuplicateKey reports a unique or primary key violation on any backend
func IsDuplicateKey(err error) bool {
	c, ok := DBErrorCode(err)
	return ok && c == ErrorCodeDuplicateKey
}

// FromDB wraps a driver error with its mapped code, ErrorCodeDB otherwise
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	if c, ok := DBErrorCode(err); ok {
		return Wrap(err, c, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromDBf is FromDB with a formatted message
func FromDBf(err error, format string, a ...any) error {
	return FromDB(err, fmt.Sprintf(format, a...))
}
