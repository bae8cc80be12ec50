package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

func TestAddCollaborator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)
	addedAt := time.Now()

	mock.ExpectQuery("INSERT INTO trip_collaborators").
		WithArgs("trip-1", "user-42", models.PermissionEdit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "user_id", "permissions", "added_at"}).
			AddRow("collab-1", "trip-1", "user-42", "edit", addedAt))

	collab, err := repo.AddCollaborator("trip-1", "user-42", models.PermissionEdit)
	require.NoError(t, err)
	assert.Equal(t, "collab-1", collab.ID)
	assert.Equal(t, models.PermissionEdit, collab.Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCollaboratorDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)

	mock.ExpectQuery("INSERT INTO trip_collaborators").
		WithArgs("trip-1", "user-42", models.PermissionView).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = repo.AddCollaborator("trip-1", "user-42", models.PermissionView)
	assert.ErrorIs(t, err, ErrDuplicateCollaborator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCollaboratorUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)

	mock.ExpectQuery("INSERT INTO trip_collaborators").
		WithArgs("trip-1", "ghost", models.PermissionView).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = repo.AddCollaborator("trip-1", "ghost", models.PermissionView)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestRemoveCollaboratorNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)

	mock.ExpectExec("DELETE FROM trip_collaborators").
		WithArgs("trip-1", "never-added").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.RemoveCollaborator("trip-1", "never-added")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveCollaborator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)

	mock.ExpectExec("DELETE FROM trip_collaborators").
		WithArgs("trip-1", "user-42").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.RemoveCollaborator("trip-1", "user-42"))
}

func TestUpdatePermissionsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)

	mock.ExpectQuery("UPDATE trip_collaborators").
		WithArgs("trip-1", "never-added", models.PermissionEdit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "user_id", "permissions", "added_at"}))

	_, err = repo.UpdatePermissions("trip-1", "never-added", models.PermissionEdit)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCollaboratorsInsertionOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db)
	first := time.Now().Add(-time.Hour)
	second := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM trip_collaborators tc").
		WithArgs("trip-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "user_id", "permissions", "added_at", "username", "full_name", "avatar_url"}).
			AddRow("c1", "trip-1", "u1", "view", first, "alice", "Alice A", nil).
			AddRow("c2", "trip-1", "u2", "edit", second, "bob", "Bob B", "https://cdn.example.com/bob.png"))

	collaborators, err := repo.ListCollaborators("trip-1")
	require.NoError(t, err)
	require.Len(t, collaborators, 2)
	assert.Equal(t, "alice", collaborators[0].Username)
	assert.Equal(t, "bob", collaborators[1].Username)
	assert.True(t, collaborators[0].AddedAt.Before(collaborators[1].AddedAt))
}
