package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/auth"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	log            logrus.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, log logrus.FieldLogger) *AuthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		log:            log,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := readJSON(w, r, &loginReq); err != nil {
		apperr.Write(w, err)
		return
	}

	email := auth.NormalizeEmail(loginReq.Email)
	if email == "" || loginReq.Password == "" {
		apperr.Write(w, apperr.InvalidArgument("Email and password are required"))
		return
	}

	user, err := h.authenticate(r.Context(), email, loginReq.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserInactive):
		apperr.Write(w, apperr.Unauthenticated("Account is deactivated"))
		return
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
		apperr.Write(w, apperr.Unauthenticated("Invalid credentials"))
		return
	default:
		h.log.WithError(err).Error("Failed to look up user for login")
		apperr.Write(w, apperr.Internal("Login failed. Please try again.", err))
		return
	}

	response, err := h.issueTokens(user)
	if err != nil {
		h.log.WithField("user_id", user.ID).WithError(err).Error("Failed to issue tokens")
		apperr.Write(w, apperr.Internal("Login failed. Please try again.", err))
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID); err != nil {
		// not fatal for the login itself
		h.log.WithField("user_id", user.ID).WithError(err).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := readJSON(w, r, &registerReq); err != nil {
		apperr.Write(w, err)
		return
	}

	email := auth.NormalizeEmail(registerReq.Email)
	if err := h.authService.ValidateEmail(email); err != nil {
		apperr.Write(w, apperr.InvalidArgument(err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		apperr.Write(w, apperr.InvalidArgument(err.Error()))
		return
	}

	// Check if email already exists
	if _, err := h.userCollection.FindUserByEmail(r.Context(), email); err == nil {
		apperr.Write(w, apperr.AlreadyExists("Email already exists"))
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		h.log.WithError(err).Error("Failed to hash password")
		apperr.Write(w, apperr.Internal("Failed to create user", err))
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			apperr.Write(w, apperr.AlreadyExists("Email already exists"))
			return
		}
		h.log.WithError(err).Error("Failed to create user")
		apperr.Write(w, apperr.Internal("Failed to create user", err))
		return
	}

	response, err := h.issueTokens(&user)
	if err != nil {
		h.log.WithField("user_id", user.ID).WithError(err).Error("Failed to issue tokens")
		apperr.Write(w, apperr.Internal("Failed to create user", err))
		return
	}

	h.log.WithField("user_id", user.ID).Info("Registered new user")
	writeJSON(w, http.StatusCreated, response)
}

// authenticate resolves the user for a login attempt.
func (h *AuthHandler) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := h.userCollection.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrUserInactive
	}
	if !h.authService.CheckPassword(password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) issueTokens(user *models.User) (*models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apperr.Write(w, apperr.NotFound("User not found"))
			return
		}
		h.log.WithField("user_id", id).WithError(err).Error("Failed to load profile")
		apperr.Write(w, apperr.Internal("Failed to load profile", err))
		return
	}

	writeJSON(w, http.StatusOK, user)
}
