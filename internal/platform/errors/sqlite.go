package errors

// SQLite-specific helpers for mapping driver errors to project ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ExtractSQLiteError returns (*sqlite.Error, true) if the root cause is a driver error.
func ExtractSQLiteError(err error) (*sqlite.Error, bool) {
	var se *sqlite.Error
	if stderrs.As(Root(err), &se) {
		return se, true
	}
	return nil, false
}

// IsResultCode reports whether the error carries the given primary SQLite result code
func IsResultCode(err error, code int) bool {
	se, ok := ExtractSQLiteError(err)
	return ok && se.Code()&0xff == code
}

// Human-friendly predicates for common result classes.

// IsBusy reports whether the error is a busy/contention error
func IsBusy(err error) bool { return IsResultCode(err, sqlite3.SQLITE_BUSY) }

// IsLocked reports whether the error is a table/database lock error
func IsLocked(err error) bool { return IsResultCode(err, sqlite3.SQLITE_LOCKED) }

// IsConstraintViolation reports whether the error is any constraint violation
func IsConstraintViolation(err error) bool { return IsResultCode(err, sqlite3.SQLITE_CONSTRAINT) }

// IsDuplicateKey reports whether the error is a unique constraint violation
func IsDuplicateKey(err error) bool {
	se, ok := ExtractSQLiteError(err)
	return ok && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// IsFull reports whether the error is a database-or-disk-full error
func IsFull(err error) bool { return IsResultCode(err, sqlite3.SQLITE_FULL) }

// DBErrorCode maps a SQLite driver error to an ErrorCode with an ok flag
// !ok means err wasn't a driver error; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	se, ok := ExtractSQLiteError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		if IsDuplicateKey(err) {
			return ErrorCodeDuplicateKey, true
		}
		return ErrorCodeConflict, true
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeDB, true
	}
}

// FromSQLite converts any error into a project *Error with a best-effort code.
// nil stays nil; context cancellations keep their identity via wrapping
func FromSQLite(err error) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeUnavailable, "database operation canceled")
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, "sqlite")
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, ErrorCodeDB, "database error")
}

// IsRetryable reports whether the error is worth retrying against SQLite.
// Busy and locked resolve when the competing transaction finishes
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsBusy(err) || IsLocked(err) {
		return true
	}
	return IsCode(err, ErrorCodeUnavailable)
}
