package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/pkg/email"
	"github.com/planmaster/planmaster/pkg/otp"
	"github.com/sirupsen/logrus"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore is the credential persistence surface the user service
// depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, newHash string) error
}

// UserService encapsulates registration, authentication and the
// OTP-based password reset flow.
type UserService struct {
	repo   UserStore
	mailer email.Mailer
	otps   otp.Store
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, mailer email.Mailer, otps otp.Store) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
		otps:   otps,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.Username == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, fmt.Errorf("%w: email already in use", apperrors.ErrValidation)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashedPwd)

	if user.Role == "" {
		user.Role = "user"
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStore, err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user
// if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	logrus.WithField("email", userEmail).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("User not found")
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrAuth)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrAuth)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// RequestPasswordReset issues a one-time code for the email and sends
// it through the mail relay. A repeated request overwrites the previous
// code. The stored password is untouched until the code is redeemed.
func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("Password reset requested for unknown email")
		return fmt.Errorf("%w: no account found with this email", apperrors.ErrNotFound)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %v", err)
	}
	s.otps.Set(user.Email, code)

	body := fmt.Sprintf("Your PlanMaster password reset code is: %s\n\nIt expires in 10 minutes. If you did not request this, ignore this email.", code)
	if err := s.mailer.Send(ctx, user.Email, "Password Reset Code", body); err != nil {
		// Drop the code so a failed delivery leaves no usable state.
		s.otps.Delete(user.Email)
		logrus.WithError(err).WithField("email", userEmail).Error("Failed to send OTP email")
		return err
	}

	logrus.WithField("email", userEmail).Info("Password reset OTP sent")
	return nil
}

// ResetPassword redeems an OTP and replaces the stored password hash.
// The code is consumed on success only.
func (s *UserService) ResetPassword(ctx context.Context, userEmail, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", apperrors.ErrValidation)
	}

	if err := s.otps.Verify(userEmail, code); err != nil {
		logrus.WithError(err).WithField("email", userEmail).Warn("OTP verification failed")
		return err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	if err := s.repo.UpdatePassword(ctx, userEmail, string(hashedPwd)); err != nil {
		logrus.WithError(err).WithField("email", userEmail).Error("Failed to update password")
		return fmt.Errorf("%w: %v", apperrors.ErrStore, err)
	}

	s.otps.Delete(userEmail)

	logrus.WithField("email", userEmail).Info("Password reset successfully")
	return nil
}

// generateOTP returns a random 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
