package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/authz"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/notification"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/repository"
)

// Invitations stay redeemable for a fixed week after they are issued.
const invitationTTL = 7 * 24 * time.Hour

type CollaborationHandler struct {
	collabRepo repository.CollaboratorRepository
	inviteRepo repository.InvitationRepository
	gate       *authz.Gate
	mailer     notification.InvitationMailer
	linkTpl    string
	logger     zerolog.Logger
}

type addCollaboratorRequest struct {
	UserID      string `json:"user_id"`
	Permissions string `json:"permissions"`
}

type updatePermissionsRequest struct {
	Permissions string `json:"permissions"`
}

type sendInvitationRequest struct {
	Email       string `json:"email"`
	Permissions string `json:"permissions"`
}

func NewCollaborationHandler(
	collabRepo repository.CollaboratorRepository,
	inviteRepo repository.InvitationRepository,
	gate *authz.Gate,
	mailer notification.InvitationMailer,
	invitationLinkTemplate string,
	logger zerolog.Logger,
) *CollaborationHandler {
	if invitationLinkTemplate == "" {
		invitationLinkTemplate = "http://localhost:3000/invitations/%s"
	}
	return &CollaborationHandler{
		collabRepo: collabRepo,
		inviteRepo: inviteRepo,
		gate:       gate,
		mailer:     mailer,
		linkTpl:    invitationLinkTemplate,
		logger:     logger,
	}
}

// ListCollaborators is open to anyone with read access to the trip.
func (h *CollaborationHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	tripID := mux.Vars(r)["tripID"]

	if _, err := h.gate.Authorize(tripID, userID, authz.ActionRead); err != nil {
		h.respondGateError(w, err, "You do not have access to this trip")
		return
	}

	collaborators, err := h.collabRepo.ListCollaborators(tripID)
	if err != nil {
		h.logger.Error().Err(err).Str("trip_id", tripID).Msg("failed to list collaborators")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve collaborators")
		return
	}

	respondSuccess(w, http.StatusOK, "Collaborators retrieved successfully", collaborators)
}

func (h *CollaborationHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	tripID := mux.Vars(r)["tripID"]

	trip, err := h.gate.Authorize(tripID, userID, authz.ActionManage)
	if err != nil {
		h.respondGateError(w, err, "Only the trip owner can manage collaborators")
		return
	}

	var req addCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	// The owner's access is implicit; a collaborator row for the owner
	// would contradict it.
	if req.UserID == trip.OwnerUserID {
		respondError(w, http.StatusBadRequest, "Cannot add trip owner as collaborator")
		return
	}

	level := models.ParsePermissionLevel(req.Permissions)

	collab, err := h.collabRepo.AddCollaborator(tripID, req.UserID, level)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateCollaborator):
			respondError(w, http.StatusBadRequest, "User is already a collaborator")
		case errors.Is(err, repository.ErrUnknownUser):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error().Err(err).Str("trip_id", tripID).Msg("failed to add collaborator")
			respondError(w, http.StatusInternalServerError, "Failed to add collaborator")
		}
		return
	}

	respondSuccess(w, http.StatusCreated, "Collaborator added successfully", map[string]interface{}{
		"collaborator_id": collab.ID,
		"user_id":         collab.UserID,
		"permissions":     collab.Permissions,
	})
}

func (h *CollaborationHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	vars := mux.Vars(r)
	tripID := vars["tripID"]

	if _, err := h.gate.Authorize(tripID, userID, authz.ActionManage); err != nil {
		h.respondGateError(w, err, "Only the trip owner can manage collaborators")
		return
	}

	if err := h.collabRepo.RemoveCollaborator(tripID, vars["userID"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Collaborator not found")
			return
		}
		h.logger.Error().Err(err).Str("trip_id", tripID).Msg("failed to remove collaborator")
		respondError(w, http.StatusInternalServerError, "Failed to remove collaborator")
		return
	}

	respondSuccess(w, http.StatusOK, "Collaborator removed successfully", nil)
}

func (h *CollaborationHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	vars := mux.Vars(r)
	tripID := vars["tripID"]

	var req updatePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Unlike the add and invite paths, an explicit permission update never
	// falls back silently.
	level := models.PermissionLevel(strings.ToLower(strings.TrimSpace(req.Permissions)))
	if !level.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid permissions. Use 'view' or 'edit'")
		return
	}

	if _, err := h.gate.Authorize(tripID, userID, authz.ActionManage); err != nil {
		h.respondGateError(w, err, "Only the trip owner can manage collaborators")
		return
	}

	collab, err := h.collabRepo.UpdatePermissions(tripID, vars["userID"], level)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Collaborator not found")
			return
		}
		h.logger.Error().Err(err).Str("trip_id", tripID).Msg("failed to update permissions")
		respondError(w, http.StatusInternalServerError, "Failed to update permissions")
		return
	}

	respondSuccess(w, http.StatusOK, "Permissions updated successfully", map[string]interface{}{
		"user_id":     collab.UserID,
		"permissions": collab.Permissions,
	})
}

// SendInvitation mints a single-use token for the invited email. The mail
// dispatch is best-effort: the invitation is already committed when it
// runs, and a delivery failure only logs a warning.
func (h *CollaborationHandler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	tripID := mux.Vars(r)["tripID"]

	trip, err := h.gate.Authorize(tripID, userID, authz.ActionManage)
	if err != nil {
		h.respondGateError(w, err, "Only the trip owner can manage collaborators")
		return
	}

	var req sendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	token, err := generateInvitationToken()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate invitation token")
		respondError(w, http.StatusInternalServerError, "Failed to create invitation")
		return
	}

	invitation, err := h.inviteRepo.CreateInvitation(models.Invitation{
		TripID:       tripID,
		InvitedBy:    userID,
		InvitedEmail: email,
		Token:        token,
		Permissions:  models.ParsePermissionLevel(req.Permissions),
		ExpiresAt:    time.Now().Add(invitationTTL),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("trip_id", tripID).Msg("failed to create invitation")
		respondError(w, http.StatusInternalServerError, "Failed to create invitation")
		return
	}

	invitationLink := fmt.Sprintf(h.linkTpl, token)
	if h.mailer != nil {
		if err := h.mailer.SendInvitation(email, trip.Name, invitationLink); err != nil {
			h.logger.Warn().Err(err).Str("invitation_id", invitation.ID).Msg("failed to send invitation email")
		}
	}

	respondSuccess(w, http.StatusCreated, "Invitation sent successfully", map[string]interface{}{
		"invitation_id":   invitation.ID,
		"token":           token,
		"expires_at":      invitation.ExpiresAt,
		"invitation_link": invitationLink,
	})
}

// PreviewInvitation resolves a token without consuming it, so the invitee
// can see what they were offered before signing in. No authentication: the
// token itself is the capability.
func (h *CollaborationHandler) PreviewInvitation(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		respondError(w, http.StatusBadRequest, "Invitation token is required")
		return
	}

	summary, err := h.inviteRepo.GetInvitationByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Invitation not found or no longer valid")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load invitation")
		respondError(w, http.StatusInternalServerError, "Failed to load invitation")
		return
	}

	respondSuccess(w, http.StatusOK, "Invitation retrieved successfully", summary)
}

// AcceptInvitation redeems a token for the authenticated caller. There is
// deliberately no check that the caller's account email matches the invited
// email; possession of the token is sufficient.
func (h *CollaborationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		respondError(w, http.StatusBadRequest, "Invitation token is required")
		return
	}

	result, err := h.inviteRepo.AcceptInvitation(token, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, http.StatusNotFound, "Invitation not found")
		case errors.Is(err, repository.ErrInvitationResolved):
			respondError(w, http.StatusConflict, "Invitation is expired or already resolved")
		case errors.Is(err, repository.ErrDuplicateCollaborator):
			respondError(w, http.StatusConflict, "You are already a collaborator on this trip")
		case errors.Is(err, repository.ErrUnknownUser):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error().Err(err).Msg("failed to accept invitation")
			respondError(w, http.StatusInternalServerError, "Failed to accept invitation")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Invitation accepted successfully", map[string]interface{}{
		"trip_id":     result.TripID,
		"permissions": result.Permissions,
	})
}

func (h *CollaborationHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	if _, ok := authz.UserIDFromRequest(r); !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		respondError(w, http.StatusBadRequest, "Invitation token is required")
		return
	}

	if err := h.inviteRepo.DeclineInvitation(token); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, http.StatusNotFound, "Invitation not found")
		case errors.Is(err, repository.ErrInvitationResolved):
			respondError(w, http.StatusConflict, "Invitation has already been accepted")
		default:
			h.logger.Error().Err(err).Msg("failed to decline invitation")
			respondError(w, http.StatusInternalServerError, "Failed to decline invitation")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Invitation declined", nil)
}

// ListMyInvitations returns the caller's pending, unexpired invitations,
// matched on the registered email from their token.
func (h *CollaborationHandler) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	email, ok := authz.UserEmailFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	invitations, err := h.inviteRepo.ListInvitationsByEmail(email)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list invitations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve invitations")
		return
	}

	respondSuccess(w, http.StatusOK, "Invitations retrieved successfully", invitations)
}

func (h *CollaborationHandler) respondGateError(w http.ResponseWriter, err error, forbiddenMsg string) {
	switch {
	case errors.Is(err, authz.ErrTripGone):
		respondError(w, http.StatusNotFound, "Trip not found")
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, forbiddenMsg)
	default:
		h.logger.Error().Err(err).Msg("authorization check failed")
		respondError(w, http.StatusInternalServerError, "Failed to authorize request")
	}
}

func generateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
