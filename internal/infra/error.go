package infra

import (
	"errors"

	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies err unless an explicit kind is given.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := Classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	if k == KindDBFailure {
		err = errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return RepositoryError{Kind: k, msg: msg, err: err}
}

// Classify maps driver errors onto repository error kinds.
func Classify(err error) RepositoryErrorKind {
	if pgconv.IsNoRows(err) {
		return KindNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return KindDuplicateKey
		case pgErrForeignKeyViolation:
			return KindForeignKeyViolated
		}
	}
	return KindDBFailure
}

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
)
