package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/planmaster/planmaster/internal/config"
	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/internal/services"
	jwtutil "github.com/planmaster/planmaster/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), user, req.Password)
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		respondError(w, err)
		return
	}

	log.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	respondJSON(w, http.StatusCreated, models.PublicUser{
		ID:       createdUser.ID,
		Username: createdUser.Username,
		Email:    createdUser.Email,
	})
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		respondError(w, fmt.Errorf("failed to generate token: %v", err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": models.PublicUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// ForgotPasswordHandler issues a one-time reset code to the given email.
func (h *UserHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	if err := h.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "OTP sent to your email",
	})
}

// ResetPasswordHandler redeems an OTP and sets a new password.
func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	if err := h.Service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}
