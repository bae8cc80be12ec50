package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/handlers"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	trip *handlers.TripHandler,
	collab *handlers.CollaborationHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/auth/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", auth.Login).Methods(http.MethodPost)

	// Public invitation preview; the token is the capability.
	router.HandleFunc("/api/invitations/{token}", collab.PreviewInvitation).Methods(http.MethodGet)

	// Authenticated API
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	api.HandleFunc("/trips", trip.CreateTrip).Methods(http.MethodPost)
	api.HandleFunc("/trips", trip.ListMyTrips).Methods(http.MethodGet)
	api.HandleFunc("/trips/shared", trip.ListSharedTrips).Methods(http.MethodGet)
	api.HandleFunc("/trips/{tripID}", trip.GetTrip).Methods(http.MethodGet)

	api.HandleFunc("/trips/{tripID}/collaborators", collab.ListCollaborators).Methods(http.MethodGet)
	api.HandleFunc("/trips/{tripID}/collaborators", collab.AddCollaborator).Methods(http.MethodPost)
	api.HandleFunc("/trips/{tripID}/collaborators/{userID}", collab.RemoveCollaborator).Methods(http.MethodDelete)
	api.HandleFunc("/trips/{tripID}/collaborators/{userID}/permissions", collab.UpdatePermissions).Methods(http.MethodPatch)

	api.HandleFunc("/trips/{tripID}/invite", collab.SendInvitation).Methods(http.MethodPost)
	api.HandleFunc("/invitations", collab.ListMyInvitations).Methods(http.MethodGet)
	api.HandleFunc("/invitations/{token}/accept", collab.AcceptInvitation).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{token}/decline", collab.DeclineInvitation).Methods(http.MethodPost)

	return router
}
