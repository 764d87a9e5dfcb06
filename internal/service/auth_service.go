package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arcanewagers/Auth/internal/auth"
	"github.com/arcanewagers/Auth/internal/config"
	"github.com/arcanewagers/Auth/internal/email"
	apperrors "github.com/arcanewagers/Auth/internal/errors"
	"github.com/arcanewagers/Auth/internal/model"
	"github.com/arcanewagers/Auth/internal/repository"
)

// TokenPair is the credential payload returned to authenticated clients.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService orchestrates signup, login, OAuth login and password reset.
type AuthService interface {
	Signup(ctx context.Context, emailAddr, password, username string) (*model.User, error)
	Login(ctx context.Context, emailAddr, password string) (*model.User, error)
	GoogleLogin(ctx context.Context, idToken string) (*model.User, error)
	GenerateTokens(user *model.User) (*TokenPair, error)
	RequestPasswordReset(ctx context.Context, emailAddr string) (string, error)
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	attempts repository.LoginAttemptRepository
	jwt      *auth.JWTService
	google   auth.GoogleVerifier
	mailer   email.Mailer
	cfg      *config.Config
	log      *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	attempts repository.LoginAttemptRepository,
	jwtService *auth.JWTService,
	google auth.GoogleVerifier,
	mailer email.Mailer,
	cfg *config.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		attempts: attempts,
		jwt:      jwtService,
		google:   google,
		mailer:   mailer,
		cfg:      cfg,
		log:      log,
	}
}

// Signup creates a new active user with a hashed password.
func (s *authService) Signup(ctx context.Context, emailAddr, password, username string) (*model.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, emailAddr)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailAlreadyInUse
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email existence: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:          emailAddr,
		HashedPassword: hashed,
		Username:       username,
		IsActive:       true,
		Status:         model.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login authenticates a user by email and password.
//
// The attempt window is checked before the password so lockout cannot be
// bypassed by supplying the correct password. A successful password check is
// ledgered before the status check; a login to a non-active account therefore
// leaves a success row behind even though the call fails.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	since := now.Add(-s.cfg.LoginAttemptWindow)
	count, err := s.attempts.CountSince(ctx, user.ID, since, s.cfg.CountFailuresOnly)
	if err != nil {
		return nil, fmt.Errorf("count login attempts: %w", err)
	}
	if count >= int64(s.cfg.MaxLoginAttempts) {
		s.log.Warn("login rate limited",
			zap.String("user_id", user.ID.String()),
			zap.Int64("attempts_in_window", count))
		return nil, apperrors.ErrTooManyLoginAttempts
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		if err := s.attempts.Record(ctx, user.ID, false, now); err != nil {
			s.log.Error("record failed attempt", zap.Error(err))
		}
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now
		if err := s.users.Update(ctx, user); err != nil {
			s.log.Error("update failed-login bookkeeping", zap.Error(err))
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.attempts.Record(ctx, user.ID, true, now); err != nil {
		s.log.Error("record successful attempt", zap.Error(err))
	}

	if user.Status != model.StatusActive {
		return nil, apperrors.ErrAccountNotActive
	}

	user.FailedLoginAttempts = 0
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error("update last login", zap.Error(err))
	}
	return user, nil
}

// GoogleLogin verifies a Google ID token and returns the matching user,
// creating a passwordless account on first login.
//
// This path performs no rate-limit check and writes no ledger rows; there is
// no password to brute-force. Non-active accounts are rejected so a ban
// cannot be sidestepped through Google.
func (s *authService) GoogleLogin(ctx context.Context, idToken string) (*model.User, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		if user.Status != model.StatusActive {
			return nil, apperrors.ErrAccountNotActive
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by google id: %w", err)
	}

	googleID := identity.Subject
	user = &model.User{
		Email:    identity.Email,
		Username: identity.Name,
		GoogleID: &googleID,
		IsActive: true,
		Status:   model.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	s.log.Info("user created via google oauth", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GenerateTokens issues the bearer credentials for a user.
func (s *authService) GenerateTokens(user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// RequestPasswordReset issues a reset token, mirrors it onto the user row with
// a one hour expiry and mails it out. Mail delivery is fire-and-forget: a
// failed send is logged but never rolls back the issued token.
func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return "", apperrors.ErrEmailNotRegistered
	}

	token, err := s.jwt.GeneratePasswordResetToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	// Stored expiry is a fixed hour, independent of the token's embedded TTL.
	expires := time.Now().Add(time.Hour)
	user.PasswordResetToken = &token
	user.PasswordResetExpires = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.log.Error("send password reset email",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and stores the new password.
// Every failure surfaces as ErrInvalidResetToken; the distinct cause is kept
// in the logs only, so the response does not leak which condition failed.
func (s *authService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.jwt.ValidatePasswordResetToken(resetToken)
	if err != nil {
		s.log.Warn("password reset rejected: bad token", zap.Error(err))
		return apperrors.ErrInvalidResetToken
	}

	userID, err := claims.UserID()
	if err != nil {
		s.log.Warn("password reset rejected: malformed user id claim", zap.Error(err))
		return apperrors.ErrInvalidResetToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("password reset rejected: user not found",
			zap.String("user_id", userID.String()))
		return apperrors.ErrInvalidResetToken
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		s.log.Warn("password reset rejected: weak new password",
			zap.String("user_id", userID.String()))
		return apperrors.ErrInvalidResetToken
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.HashedPassword = hashed
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	if err := s.mailer.SendPasswordChangedEmail(ctx, user.Email); err != nil {
		s.log.Error("send password changed email",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.log.Info("password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}
