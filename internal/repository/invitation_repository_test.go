package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

func TestCreateInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)
	now := time.Now()
	expires := now.Add(7 * 24 * time.Hour)

	mock.ExpectQuery("INSERT INTO trip_invitations").
		WithArgs("trip-1", "owner-1", "bob@example.com", "tok1", models.PermissionEdit, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trip_id", "invited_by", "invited_email", "invitation_token", "permissions", "status", "created_at", "expires_at",
		}).AddRow("inv-1", "trip-1", "owner-1", "bob@example.com", "tok1", "edit", "pending", now, expires))

	inv, err := repo.CreateInvitation(models.Invitation{
		TripID:       "trip-1",
		InvitedBy:    "owner-1",
		InvitedEmail: "Bob@Example.com",
		Token:        "tok1",
		Permissions:  models.PermissionEdit,
		ExpiresAt:    expires,
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
	assert.Equal(t, models.InvitationPending, inv.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "permissions"}).AddRow("trip-1", "edit"))
	mock.ExpectExec("INSERT INTO trip_collaborators").
		WithArgs("trip-1", "user-42", models.PermissionEdit).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.AcceptInvitation("tok1", "user-42")
	require.NoError(t, err)
	assert.Equal(t, "trip-1", result.TripID)
	assert.Equal(t, models.PermissionEdit, result.Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInvitationUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE trip_invitations").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM trip_invitations").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = repo.AcceptInvitation("nope", "user-42")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInvitationAlreadyResolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM trip_invitations").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("accepted"))
	mock.ExpectRollback()

	_, err = repo.AcceptInvitation("tok1", "user-42")
	assert.ErrorIs(t, err, ErrInvitationResolved)
}

func TestAcceptInvitationExpired(t *testing.T) {
	// An expired invitation still has status pending in storage; the CAS
	// filters it out by expires_at and classification reports it resolved.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE trip_invitations").
		WithArgs("stale").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM trip_invitations").
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectRollback()

	_, err = repo.AcceptInvitation("stale", "user-42")
	assert.ErrorIs(t, err, ErrInvitationResolved)
}

func TestAcceptInvitationDuplicateCollaboratorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "permissions"}).AddRow("trip-1", "view"))
	mock.ExpectExec("INSERT INTO trip_collaborators").
		WithArgs("trip-1", "user-42", models.PermissionView).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err = repo.AcceptInvitation("tok1", "user-42")
	assert.ErrorIs(t, err, ErrDuplicateCollaborator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectExec("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeclineInvitation("tok1"))
}

func TestDeclineInvitationIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectExec("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM trip_invitations").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("declined"))

	assert.NoError(t, repo.DeclineInvitation("tok1"))
}

func TestDeclineAcceptedInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectExec("UPDATE trip_invitations").
		WithArgs("tok1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM trip_invitations").
		WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("accepted"))

	assert.ErrorIs(t, repo.DeclineInvitation("tok1"), ErrInvitationResolved)
}

func TestGetInvitationByTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)

	mock.ExpectQuery("SELECT(.+)FROM trip_invitations ti").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "invitation_token", "permissions", "created_at", "expires_at",
			"trip_id", "trip_name", "description", "cover_image_url", "username", "full_name",
		}))

	_, err = repo.GetInvitationByToken("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvitationsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewInvitationRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT(.+)FROM trip_invitations ti").
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "invitation_token", "permissions", "created_at", "expires_at",
			"trip_id", "trip_name", "description", "cover_image_url", "username", "full_name",
		}).AddRow("inv-2", "tok2", "view", now, now.Add(time.Hour), "trip-2", "Alps", nil, nil, "alice", "Alice A").
			AddRow("inv-1", "tok1", "edit", now.Add(-time.Hour), now.Add(time.Hour), "trip-1", "Bali", "two weeks", nil, "alice", "Alice A"))

	invitations, err := repo.ListInvitationsByEmail("Bob@Example.com")
	require.NoError(t, err)
	require.Len(t, invitations, 2)
	assert.Equal(t, "Alps", invitations[0].TripName)
	assert.Equal(t, models.PermissionEdit, invitations[1].Permissions)
}
