package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/authz"
	"github.com/AdityaVyavhare/oddo-Hackathon/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	userRepo  repository.UserRepository
	jwtSecret string
	logger    zerolog.Logger
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(userRepo repository.UserRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		respondError(w, http.StatusBadRequest, "Email, password and username are required")
		return
	}

	user, err := h.userRepo.CreateUser(req.Email, req.Password, req.Username, req.FullName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			respondError(w, http.StatusConflict, "User already exists")
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondSuccess(w, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userRepo.AuthenticateUser(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondSuccess(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": tokenString,
		"user":  user,
	})
}

// JWTMiddleware authenticates the request and installs the caller's
// identity on the context.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			respondError(w, http.StatusUnauthorized, "Token expired")
			return
		}

		userID, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "Missing token claim")
			return
		}

		ctx := authz.WithIdentity(r.Context(), userID, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
