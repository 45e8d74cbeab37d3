package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type mockAuthRepo struct {
	user *models.User
	err  error
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func newAuthService(repo authUserRepository) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "icrs-api"})
}

func hashed(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: &models.User{ID: "u1", Email: "faculty@college.edu", PasswordHash: hashed(t, "faculty123"), Role: models.RoleFaculty, Enabled: true}}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "faculty@college.edu", Password: "faculty123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleFaculty, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.Caller{ID: "u1", Email: "faculty@college.edu", Role: models.RoleFaculty}, claims.Caller())
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{user: &models.User{ID: "u1", PasswordHash: hashed(t, "right"), Enabled: true}}
	_, err := newAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "a@college.edu", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	_, err := newAuthService(&mockAuthRepo{err: sql.ErrNoRows}).Login(context.Background(), models.LoginRequest{Email: "a@college.edu", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginDisabled(t *testing.T) {
	repo := &mockAuthRepo{user: &models.User{ID: "u1", PasswordHash: hashed(t, "pw"), Enabled: false}}
	_, err := newAuthService(repo).Login(context.Background(), models.LoginRequest{Email: "a@college.edu", Password: "pw"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	_, err := newAuthService(&mockAuthRepo{}).Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestValidateTokenRejectsForeignIssuer(t *testing.T) {
	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "someone-else"})
	token, _, err := other.generateAccessToken(&models.User{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newAuthService(&mockAuthRepo{}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: -time.Minute, Issuer: "icrs-api"})
	token, _, err := svc.generateAccessToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
