// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
//
// The legacy schema uses inconsistent column naming across relations
// (companyname, projectdesc, submittedon, ...); the row structs in this
// package are the single normalization boundary - raw column names never
// leak past it.
package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || pqErr.Code != pqUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// trapNoRowsErr maps psql "no rows" to the given domain sentinel.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func intsToArray(ids []int) pq.Int64Array {
	if ids == nil {
		return nil
	}
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	return arr
}

func arrayToInts(arr pq.Int64Array) []int {
	if arr == nil {
		return nil
	}
	ids := make([]int, 0, len(arr))
	for _, id := range arr {
		ids = append(ids, int(id))
	}
	return ids
}
