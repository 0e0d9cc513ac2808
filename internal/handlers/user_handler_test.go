package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/planmaster/planmaster/internal/config"
	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/internal/services"
	"github.com/planmaster/planmaster/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memUserStore struct {
	byEmail map[string]*models.User
}

func (m *memUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	stored := *user
	m.byEmail[user.Email] = &stored
	return user, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) UpdatePassword(_ context.Context, email, newHash string) error {
	user, ok := m.byEmail[email]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.HashedPassword = newHash
	return nil
}

type captureMailer struct {
	bodies []string
}

func (c *captureMailer) Send(_ context.Context, _, _, body string) error {
	c.bodies = append(c.bodies, body)
	return nil
}

func newUserRouter(otpTTL time.Duration) (http.Handler, *captureMailer) {
	store := &memUserStore{byEmail: make(map[string]*models.User)}
	mailer := &captureMailer{}
	svc := services.NewUserService(store, mailer, otp.NewMemoryStore(otpTTL))
	cfg := &config.Config{JWTSecret: testSecret, TokenExpiry: time.Hour}
	handler := NewUserHandler(svc, cfg)

	m := http.NewServeMux()
	m.HandleFunc("/users/register", handler.RegisterUserHandler)
	m.HandleFunc("/users/login", handler.LoginUserHandler)
	m.HandleFunc("/users/forgot-password", handler.ForgotPasswordHandler)
	m.HandleFunc("/users/reset-password", handler.ResetPasswordHandler)
	return m, mailer
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, &buf))
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newUserRouter(10 * time.Minute)

	rec := postJSON(t, router, "/users/register", map[string]string{
		"username": "dana",
		"email":    "dana@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "dana", user.Username)
	// The password hash never leaks into the response.
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	// Registering the same email again fails validation.
	rec = postJSON(t, router, "/users/register", map[string]string{
		"username": "imposter",
		"email":    "dana@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already in use")
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newUserRouter(10 * time.Minute)

	rec := postJSON(t, router, "/users/register", map[string]string{
		"username": "dana", "email": "dana@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/users/login", map[string]string{
		"email": "dana@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "dana", resp.User.Username)

	rec = postJSON(t, router, "/users/login", map[string]string{
		"email": "dana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	router, mailer := newUserRouter(10 * time.Minute)

	rec := postJSON(t, router, "/users/register", map[string]string{
		"username": "dana", "email": "dana@example.com", "password": "oldpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/users/forgot-password", map[string]string{"email": "dana@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mailer.bodies, 1)
	code := regexp.MustCompile(`\d{6}`).FindString(mailer.bodies[0])
	require.NotEmpty(t, code)

	rec = postJSON(t, router, "/users/reset-password", map[string]string{
		"email": "dana@example.com", "otp": code, "new_password": "newpassword",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/users/login", map[string]string{
		"email": "dana@example.com", "password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordResetExpiredOTP(t *testing.T) {
	router, mailer := newUserRouter(-time.Minute)

	rec := postJSON(t, router, "/users/register", map[string]string{
		"username": "dana", "email": "dana@example.com", "password": "oldpassword",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/users/forgot-password", map[string]string{"email": "dana@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := regexp.MustCompile(`\d{6}`).FindString(mailer.bodies[0])

	rec = postJSON(t, router, "/users/reset-password", map[string]string{
		"email": "dana@example.com", "otp": code, "new_password": "newpassword",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "OTP has expired")

	// The old password still works.
	rec = postJSON(t, router, "/users/login", map[string]string{
		"email": "dana@example.com", "password": "oldpassword",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
