package repository

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

type CreateTripParams struct {
	OwnerUserID   string
	Name          string
	Description   *string
	CoverImageURL *string
	IsPublic      bool
}

type TripRepository interface {
	CreateTrip(params CreateTripParams) (models.Trip, error)
	GetTripByID(tripID string) (models.Trip, error)
	ListTripsByOwner(ownerUserID string) ([]models.Trip, error)
	ListTripsSharedWith(userID string) ([]models.Trip, error)
}

type tripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) TripRepository {
	return &tripRepository{db: db}
}

const tripColumns = "id, owner_user_id, name, description, cover_image_url, is_public, created_at, updated_at"

func (r *tripRepository) CreateTrip(params CreateTripParams) (models.Trip, error) {
	const query = `
		INSERT INTO trips (owner_user_id, name, description, cover_image_url, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + tripColumns

	var trip models.Trip
	err := r.db.QueryRow(query,
		params.OwnerUserID,
		params.Name,
		params.Description,
		params.CoverImageURL,
		params.IsPublic,
	).Scan(
		&trip.ID,
		&trip.OwnerUserID,
		&trip.Name,
		&trip.Description,
		&trip.CoverImageURL,
		&trip.IsPublic,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Trip{}, ErrUnknownUser
		}
		return models.Trip{}, errors.Wrap(err, "insert trip")
	}

	return trip, nil
}

func (r *tripRepository) GetTripByID(tripID string) (models.Trip, error) {
	const query = `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	var trip models.Trip
	err := r.db.QueryRow(query, tripID).Scan(
		&trip.ID,
		&trip.OwnerUserID,
		&trip.Name,
		&trip.Description,
		&trip.CoverImageURL,
		&trip.IsPublic,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, ErrNotFound
		}
		return models.Trip{}, errors.Wrap(err, "scan trip")
	}

	return trip, nil
}

func (r *tripRepository) ListTripsByOwner(ownerUserID string) ([]models.Trip, error) {
	const query = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_user_id = $1
		ORDER BY created_at DESC`

	return r.listTrips(query, ownerUserID)
}

func (r *tripRepository) ListTripsSharedWith(userID string) ([]models.Trip, error) {
	const query = `
		SELECT t.id, t.owner_user_id, t.name, t.description, t.cover_image_url, t.is_public, t.created_at, t.updated_at
		FROM trips t
		JOIN trip_collaborators tc ON tc.trip_id = t.id
		WHERE tc.user_id = $1
		ORDER BY tc.added_at DESC`

	return r.listTrips(query, userID)
}

func (r *tripRepository) listTrips(query string, args ...interface{}) ([]models.Trip, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query trips")
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		if err := rows.Scan(
			&trip.ID,
			&trip.OwnerUserID,
			&trip.Name,
			&trip.Description,
			&trip.CoverImageURL,
			&trip.IsPublic,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan trip")
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trips, nil
}
