package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Domain-level storage errors. Handlers branch on these instead of driver
// error strings; the translation from Postgres error codes happens here at
// the repository boundary.
var (
	ErrNotFound              = errors.New("record not found")
	ErrDuplicateCollaborator = errors.New("user is already a collaborator")
	ErrUnknownUser           = errors.New("referenced user does not exist")
	ErrDuplicateUser         = errors.New("user already exists")
	ErrInvitationResolved    = errors.New("invitation is expired or already resolved")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
