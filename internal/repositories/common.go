package repositories

import (
	"database/sql"
	"errors"

	intconfig "cabbooking/internal/config"
	intdb "cabbooking/internal/db"
	"cabbooking/internal/domain"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func pick(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

// mapErr turns driver errors into domain errors for resource.
func mapErr(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: resource, Err: err}
	case intdb.IsDuplicateKey(err):
		return domain.ConflictError{Resource: resource, Code: "duplicate", Msg: "already exists", Err: err}
	case intdb.IsForeignKeyViolation(err):
		return domain.ConflictError{Resource: resource, Code: "reference", Msg: "referenced record missing or in use", Err: err}
	default:
		return domain.InternalError{Msg: resource + " query failed", Err: err}
	}
}

func affected(resource string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
