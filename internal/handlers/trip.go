package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/authz"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/repository"
)

type TripHandler struct {
	tripRepo repository.TripRepository
	gate     *authz.Gate
	logger   zerolog.Logger
}

type createTripRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	CoverImageURL *string `json:"cover_image_url"`
	IsPublic      bool    `json:"is_public"`
}

func NewTripHandler(tripRepo repository.TripRepository, gate *authz.Gate, logger zerolog.Logger) *TripHandler {
	return &TripHandler{
		tripRepo: tripRepo,
		gate:     gate,
		logger:   logger,
	}
}

func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Trip name is required")
		return
	}

	trip, err := h.tripRepo.CreateTrip(repository.CreateTripParams{
		OwnerUserID:   userID,
		Name:          req.Name,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create trip")
		respondError(w, http.StatusInternalServerError, "Failed to create trip")
		return
	}

	respondSuccess(w, http.StatusCreated, "Trip created successfully", trip)
}

func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	tripID := mux.Vars(r)["tripID"]

	trip, err := h.gate.Authorize(tripID, userID, authz.ActionRead)
	if err != nil {
		h.respondGateError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Trip retrieved successfully", trip)
}

func (h *TripHandler) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	trips, err := h.tripRepo.ListTripsByOwner(userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list trips")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trips")
		return
	}

	respondSuccess(w, http.StatusOK, "Trips retrieved successfully", trips)
}

// ListSharedTrips returns trips the caller can access through a
// collaborator row rather than ownership.
func (h *TripHandler) ListSharedTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	trips, err := h.tripRepo.ListTripsSharedWith(userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list shared trips")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trips")
		return
	}

	respondSuccess(w, http.StatusOK, "Trips retrieved successfully", trips)
}

func (h *TripHandler) respondGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrTripGone):
		respondError(w, http.StatusNotFound, "Trip not found")
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, "You do not have access to this trip")
	default:
		h.logger.Error().Err(err).Msg("authorization check failed")
		respondError(w, http.StatusInternalServerError, "Failed to authorize request")
	}
}
