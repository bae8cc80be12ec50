package authz

import (
	"github.com/pkg/errors"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/repository"
)

// Action classifies what the caller wants to do with a trip. ActionManage
// covers collaborator and invitation administration and is never granted
// through a collaborator row.
type Action int

const (
	ActionRead Action = iota
	ActionEditContent
	ActionManage
)

// Gate errors, ordered by what the handler should surface.
var (
	ErrForbidden = errors.New("insufficient rights for trip")
	ErrTripGone  = errors.New("trip not found")
)

// Gate is the single decision point for "may user U perform action A on
// trip T". It combines ownership, the trip's public flag, and the
// permission store.
type Gate struct {
	trips   repository.TripRepository
	collabs repository.CollaboratorRepository
}

func NewGate(trips repository.TripRepository, collabs repository.CollaboratorRepository) *Gate {
	return &Gate{trips: trips, collabs: collabs}
}

// Authorize loads the trip and evaluates the decision table in order:
// owner wins everything; a public trip grants reads to anyone; an edit
// collaborator gets reads and content edits; a view collaborator gets
// reads; everything else is ErrForbidden. A missing trip is ErrTripGone.
func (g *Gate) Authorize(tripID, userID string, action Action) (models.Trip, error) {
	trip, err := g.trips.GetTripByID(tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Trip{}, ErrTripGone
		}
		return models.Trip{}, err
	}

	if trip.OwnerUserID == userID {
		return trip, nil
	}

	if trip.IsPublic && action == ActionRead {
		return trip, nil
	}

	if action == ActionManage {
		return models.Trip{}, ErrForbidden
	}

	collab, err := g.collabs.GetCollaborator(tripID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Trip{}, ErrForbidden
		}
		return models.Trip{}, err
	}

	switch action {
	case ActionRead:
		return trip, nil
	case ActionEditContent:
		if collab.Permissions == models.PermissionEdit {
			return trip, nil
		}
	}

	return models.Trip{}, ErrForbidden
}
