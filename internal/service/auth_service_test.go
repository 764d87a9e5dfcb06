package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arcanewagers/Auth/internal/auth"
	"github.com/arcanewagers/Auth/internal/config"
	apperrors "github.com/arcanewagers/Auth/internal/errors"
	"github.com/arcanewagers/Auth/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockLoginAttemptRepository is a mock implementation of LoginAttemptRepository.
type MockLoginAttemptRepository struct {
	mock.Mock
}

func (m *MockLoginAttemptRepository) Record(ctx context.Context, userID uuid.UUID, success bool, at time.Time) error {
	args := m.Called(ctx, userID, success, at)
	return args.Error(0)
}

func (m *MockLoginAttemptRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time, failuresOnly bool) (int64, error) {
	args := m.Called(ctx, userID, since, failuresOnly)
	return args.Get(0).(int64), args.Error(1)
}

// MockMailer is a mock implementation of email.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordChangedEmail(ctx context.Context, to string) error {
	args := m.Called(ctx, to)
	return args.Error(0)
}

// MockGoogleVerifier is a mock implementation of auth.GoogleVerifier.
type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) Verify(ctx context.Context, token string) (*auth.GoogleIdentity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.GoogleIdentity), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		AccessTokenTTL:        48 * time.Hour,
		PasswordResetTokenTTL: time.Hour,
		MaxLoginAttempts:      5,
		LoginAttemptWindow:    15 * time.Minute,
	}
}

type serviceFixture struct {
	users    *MockUserRepository
	attempts *MockLoginAttemptRepository
	mailer   *MockMailer
	google   *MockGoogleVerifier
	jwt      *auth.JWTService
	cfg      *config.Config
	svc      AuthService
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		users:    new(MockUserRepository),
		attempts: new(MockLoginAttemptRepository),
		mailer:   new(MockMailer),
		google:   new(MockGoogleVerifier),
		cfg:      testConfig(),
	}
	f.jwt = auth.NewJWTService(f.cfg.JWTSecret, f.cfg.PasswordResetTokenTTL)
	f.svc = NewAuthService(f.users, f.attempts, f.jwt, f.google, f.mailer, f.cfg, zap.NewNop())
	return f
}

func activeUser(password string) *model.User {
	hashed, _ := auth.HashPassword(password)
	return &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		Username:       "tester",
		HashedPassword: hashed,
		IsActive:       true,
		Status:         model.StatusActive,
	}
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		username      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful signup",
			email:    "new@example.com",
			password: "Aa1!aaaa",
			username: "newuser",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "email already registered",
			email:    "existing@example.com",
			password: "Aa1!aaaa",
			username: "existing",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailAlreadyInUse,
		},
		{
			name:          "weak password rejected before any lookup",
			email:         "new@example.com",
			password:      "alllowercase1!",
			username:      "newuser",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setupMock(f.users)

			user, err := f.svc.Signup(context.Background(), tt.email, tt.password, tt.username)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.StatusActive, user.Status)
				assert.NotEqual(t, tt.password, user.HashedPassword)
				assert.True(t, auth.VerifyPassword(tt.password, user.HashedPassword))
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture()
	user := activeUser("Aa1!aaaa")

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.Anything, false).Return(int64(0), nil)
	f.attempts.On("Record", mock.Anything, user.ID, true, mock.Anything).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)

	got, err := f.svc.Login(context.Background(), user.Email, "Aa1!aaaa")

	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLogin)
	assert.Zero(t, got.FailedLoginAttempts)
	f.attempts.AssertExpectations(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newFixture()
	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Login(context.Background(), "nobody@example.com", "Aa1!aaaa")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	f.attempts.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login_RateLimited(t *testing.T) {
	// The window check runs before password verification, so the correct
	// password cannot bypass the lockout.
	f := newFixture()
	user := activeUser("Aa1!aaaa")

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.Anything, false).
		Return(int64(f.cfg.MaxLoginAttempts), nil)

	_, err := f.svc.Login(context.Background(), user.Email, "Aa1!aaaa")

	assert.ErrorIs(t, err, apperrors.ErrTooManyLoginAttempts)
	f.attempts.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login_WindowBounds(t *testing.T) {
	f := newFixture()
	user := activeUser("Aa1!aaaa")
	start := time.Now()

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.MatchedBy(func(since time.Time) bool {
		expected := start.Add(-f.cfg.LoginAttemptWindow)
		return since.Sub(expected) >= 0 && since.Sub(expected) < 5*time.Second
	}), false).Return(int64(0), nil)
	f.attempts.On("Record", mock.Anything, user.ID, true, mock.Anything).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)

	_, err := f.svc.Login(context.Background(), user.Email, "Aa1!aaaa")

	assert.NoError(t, err)
	f.attempts.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	user := activeUser("Aa1!aaaa")

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.Anything, false).Return(int64(0), nil)
	f.attempts.On("Record", mock.Anything, user.ID, false, mock.Anything).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)

	_, err := f.svc.Login(context.Background(), user.Email, "WrongPass1!")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, 1, user.FailedLoginAttempts)
	assert.NotNil(t, user.LastFailedLogin)
	f.attempts.AssertExpectations(t)
}

func TestAuthService_Login_InactiveAccountLedgeredAsSuccess(t *testing.T) {
	// A correct password against a suspended account is recorded as a
	// successful attempt even though the login ultimately fails on status.
	f := newFixture()
	user := activeUser("Aa1!aaaa")
	user.Status = model.StatusSuspended

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.Anything, false).Return(int64(0), nil)
	f.attempts.On("Record", mock.Anything, user.ID, true, mock.Anything).Return(nil)

	_, err := f.svc.Login(context.Background(), user.Email, "Aa1!aaaa")

	assert.ErrorIs(t, err, apperrors.ErrAccountNotActive)
	f.attempts.AssertCalled(t, "Record", mock.Anything, user.ID, true, mock.Anything)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Login_CountFailuresOnlyPolicy(t *testing.T) {
	f := newFixture()
	f.cfg.CountFailuresOnly = true
	user := activeUser("Aa1!aaaa")

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.attempts.On("CountSince", mock.Anything, user.ID, mock.Anything, true).Return(int64(0), nil)
	f.attempts.On("Record", mock.Anything, user.ID, true, mock.Anything).Return(nil)
	f.users.On("Update", mock.Anything, user).Return(nil)

	_, err := f.svc.Login(context.Background(), user.Email, "Aa1!aaaa")

	assert.NoError(t, err)
	f.attempts.AssertExpectations(t)
}

func TestAuthService_GoogleLogin(t *testing.T) {
	identity := &auth.GoogleIdentity{
		Subject: "google-sub-123",
		Email:   "oauth@example.com",
		Name:    "OAuth User",
	}

	t.Run("existing user", func(t *testing.T) {
		f := newFixture()
		user := activeUser("Aa1!aaaa")
		f.google.On("Verify", mock.Anything, "id-token").Return(identity, nil)
		f.users.On("FindByGoogleID", mock.Anything, identity.Subject).Return(user, nil)

		got, err := f.svc.GoogleLogin(context.Background(), "id-token")

		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("creates passwordless user on first login", func(t *testing.T) {
		f := newFixture()
		f.google.On("Verify", mock.Anything, "id-token").Return(identity, nil)
		f.users.On("FindByGoogleID", mock.Anything, identity.Subject).Return(nil, gorm.ErrRecordNotFound)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		got, err := f.svc.GoogleLogin(context.Background(), "id-token")

		assert.NoError(t, err)
		assert.Equal(t, identity.Email, got.Email)
		assert.Empty(t, got.HashedPassword)
		assert.Equal(t, identity.Subject, *got.GoogleID)
		assert.Equal(t, model.StatusActive, got.Status)
	})

	t.Run("non-active account rejected", func(t *testing.T) {
		f := newFixture()
		user := activeUser("Aa1!aaaa")
		user.Status = model.StatusBanned
		f.google.On("Verify", mock.Anything, "id-token").Return(identity, nil)
		f.users.On("FindByGoogleID", mock.Anything, identity.Subject).Return(user, nil)

		_, err := f.svc.GoogleLogin(context.Background(), "id-token")

		assert.ErrorIs(t, err, apperrors.ErrAccountNotActive)
	})

	t.Run("verification failure", func(t *testing.T) {
		f := newFixture()
		f.google.On("Verify", mock.Anything, "bad-token").Return(nil, apperrors.ErrInvalidGoogleToken)

		_, err := f.svc.GoogleLogin(context.Background(), "bad-token")

		assert.ErrorIs(t, err, apperrors.ErrInvalidGoogleToken)
		f.users.AssertNotCalled(t, "FindByGoogleID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_GenerateTokens(t *testing.T) {
	f := newFixture()
	user := activeUser("Aa1!aaaa")

	pair, err := f.svc.GenerateTokens(user)

	assert.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	claims, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	assert.NoError(t, err)
	got, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, apperrors.ErrEmailNotRegistered)
	})

	t.Run("stores token with one hour expiry and mails it", func(t *testing.T) {
		f := newFixture()
		user := activeUser("Aa1!aaaa")

		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.mailer.On("SendPasswordResetEmail", mock.Anything, user.Email, mock.Anything).Return(nil)

		token, err := f.svc.RequestPasswordReset(context.Background(), user.Email)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, token, *user.PasswordResetToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), *user.PasswordResetExpires, 5*time.Second)
		f.mailer.AssertExpectations(t)
	})

	t.Run("mail failure does not roll back the issued token", func(t *testing.T) {
		f := newFixture()
		user := activeUser("Aa1!aaaa")

		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.mailer.On("SendPasswordResetEmail", mock.Anything, user.Email, mock.Anything).
			Return(assert.AnError)

		token, err := f.svc.RequestPasswordReset(context.Background(), user.Email)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotNil(t, user.PasswordResetToken)
	})
}

func TestAuthService_ConfirmPasswordReset(t *testing.T) {
	t.Run("successful reset", func(t *testing.T) {
		f := newFixture()
		user := activeUser("OldPass1!")
		token, err := f.jwt.GeneratePasswordResetToken(user.ID)
		assert.NoError(t, err)
		user.PasswordResetToken = &token

		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)
		f.mailer.On("SendPasswordChangedEmail", mock.Anything, user.Email).Return(nil)

		err = f.svc.ConfirmPasswordReset(context.Background(), token, "NewPass1!")

		assert.NoError(t, err)
		assert.True(t, auth.VerifyPassword("NewPass1!", user.HashedPassword))
		assert.False(t, auth.VerifyPassword("OldPass1!", user.HashedPassword))
		assert.Nil(t, user.PasswordResetToken)
		assert.Nil(t, user.PasswordResetExpires)
		f.mailer.AssertExpectations(t)
	})

	t.Run("access token replayed as reset token", func(t *testing.T) {
		f := newFixture()
		accessToken, err := f.jwt.GenerateAccessToken(uuid.New(), time.Hour)
		assert.NoError(t, err)

		err = f.svc.ConfirmPasswordReset(context.Background(), accessToken, "NewPass1!")

		assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		token, err := f.jwt.GeneratePasswordResetToken(userID)
		assert.NoError(t, err)

		f.users.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		err = f.svc.ConfirmPasswordReset(context.Background(), token, "NewPass1!")

		assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
	})

	t.Run("weak new password collapses to the same error", func(t *testing.T) {
		f := newFixture()
		user := activeUser("OldPass1!")
		token, err := f.jwt.GeneratePasswordResetToken(user.ID)
		assert.NoError(t, err)

		f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err = f.svc.ConfirmPasswordReset(context.Background(), token, "weak")

		assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
		assert.True(t, auth.VerifyPassword("OldPass1!", user.HashedPassword))
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
