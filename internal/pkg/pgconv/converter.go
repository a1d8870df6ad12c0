// Package pgconv maps nullable Postgres columns onto the pointer fields the domain uses.
package pgconv

import (
	"time"

	"rental-orchestrator/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func TextPtr(pt pgtype.Text) *string {
	if !pt.Valid {
		return nil
	}
	s := pt.String
	return &s
}

// Enum reads a nullable text column into a string-backed domain type.
func Enum[T ~string](pt pgtype.Text) *T {
	if !pt.Valid {
		return nil
	}
	v := T(pt.String)
	return &v
}

// NullText stores an empty string as NULL.
func NullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// TimeUTC reads a nullable timestamptz, normalized to UTC.
func TimeUTC(pt pgtype.Timestamptz) *time.Time {
	if !pt.Valid {
		return nil
	}
	t := pt.Time.UTC()
	return &t
}

func IsNoRows(err error) bool {
	return errs.Is(err, pgx.ErrNoRows)
}
