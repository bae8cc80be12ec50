package repository

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

// CollaboratorRepository is the permission store: the durable mapping of
// (trip, user) pairs to permission levels. Uniqueness of the pair is
// enforced by the table's unique index and surfaced as
// ErrDuplicateCollaborator.
type CollaboratorRepository interface {
	AddCollaborator(tripID, userID string, level models.PermissionLevel) (models.Collaborator, error)
	RemoveCollaborator(tripID, userID string) error
	UpdatePermissions(tripID, userID string, level models.PermissionLevel) (models.Collaborator, error)
	ListCollaborators(tripID string) ([]models.Collaborator, error)
	GetCollaborator(tripID, userID string) (models.Collaborator, error)
}

type collaboratorRepository struct {
	db *sql.DB
}

func NewCollaboratorRepository(db *sql.DB) CollaboratorRepository {
	return &collaboratorRepository{db: db}
}

func (r *collaboratorRepository) AddCollaborator(tripID, userID string, level models.PermissionLevel) (models.Collaborator, error) {
	const query = `
		INSERT INTO trip_collaborators (trip_id, user_id, permissions)
		VALUES ($1, $2, $3)
		RETURNING id, trip_id, user_id, permissions, added_at;
	`

	var collab models.Collaborator
	err := r.db.QueryRow(query, tripID, userID, level).Scan(
		&collab.ID,
		&collab.TripID,
		&collab.UserID,
		&collab.Permissions,
		&collab.AddedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return models.Collaborator{}, ErrDuplicateCollaborator
		case isForeignKeyViolation(err):
			return models.Collaborator{}, ErrUnknownUser
		}
		return models.Collaborator{}, errors.Wrap(err, "insert collaborator")
	}

	return collab, nil
}

func (r *collaboratorRepository) RemoveCollaborator(tripID, userID string) error {
	const query = `
		DELETE FROM trip_collaborators
		WHERE trip_id = $1 AND user_id = $2;
	`

	result, err := r.db.Exec(query, tripID, userID)
	if err != nil {
		return errors.Wrap(err, "delete collaborator")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *collaboratorRepository) UpdatePermissions(tripID, userID string, level models.PermissionLevel) (models.Collaborator, error) {
	const query = `
		UPDATE trip_collaborators
		SET permissions = $3
		WHERE trip_id = $1 AND user_id = $2
		RETURNING id, trip_id, user_id, permissions, added_at;
	`

	var collab models.Collaborator
	err := r.db.QueryRow(query, tripID, userID, level).Scan(
		&collab.ID,
		&collab.TripID,
		&collab.UserID,
		&collab.Permissions,
		&collab.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Collaborator{}, ErrNotFound
		}
		return models.Collaborator{}, errors.Wrap(err, "update collaborator permissions")
	}

	return collab, nil
}

func (r *collaboratorRepository) ListCollaborators(tripID string) ([]models.Collaborator, error) {
	const query = `
		SELECT tc.id, tc.trip_id, tc.user_id, tc.permissions, tc.added_at,
		       u.username, u.full_name, u.avatar_url
		FROM trip_collaborators tc
		JOIN users u ON u.id = tc.user_id
		WHERE tc.trip_id = $1
		ORDER BY tc.added_at ASC;
	`

	rows, err := r.db.Query(query, tripID)
	if err != nil {
		return nil, errors.Wrap(err, "query collaborators")
	}
	defer rows.Close()

	var collaborators []models.Collaborator
	for rows.Next() {
		var collab models.Collaborator
		if err := rows.Scan(
			&collab.ID,
			&collab.TripID,
			&collab.UserID,
			&collab.Permissions,
			&collab.AddedAt,
			&collab.Username,
			&collab.FullName,
			&collab.AvatarURL,
		); err != nil {
			return nil, errors.Wrap(err, "scan collaborator")
		}
		collaborators = append(collaborators, collab)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return collaborators, nil
}

func (r *collaboratorRepository) GetCollaborator(tripID, userID string) (models.Collaborator, error) {
	const query = `
		SELECT id, trip_id, user_id, permissions, added_at
		FROM trip_collaborators
		WHERE trip_id = $1 AND user_id = $2;
	`

	var collab models.Collaborator
	err := r.db.QueryRow(query, tripID, userID).Scan(
		&collab.ID,
		&collab.TripID,
		&collab.UserID,
		&collab.Permissions,
		&collab.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Collaborator{}, ErrNotFound
		}
		return models.Collaborator{}, errors.Wrap(err, "scan collaborator")
	}

	return collab, nil
}
