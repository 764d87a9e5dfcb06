package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "github.com/arcanewagers/Auth/internal/errors"
)

// passwordResetSubject marks reset tokens so access tokens cannot be replayed
// as reset tokens.
const passwordResetSubject = "password_reset"

// AccessClaims is the access token payload: user id as subject plus expiry.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// UserID parses the token subject back into a user id.
func (c *AccessClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// ResetClaims is the password reset token payload. The subject is the fixed
// "password_reset" marker; the target user travels in a separate claim.
type ResetClaims struct {
	UserIDClaim string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserID parses the user_id claim.
func (c *ResetClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.UserIDClaim)
}

// JWTService issues and validates signed, time-limited bearer tokens.
type JWTService struct {
	secret   []byte
	resetTTL time.Duration
}

// NewJWTService creates a new JWT service with the given secret and password
// reset token lifetime.
func NewJWTService(secret string, resetTTL time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), resetTTL: resetTTL}
}

// GenerateAccessToken signs an access token for the user with the given TTL.
func (s *JWTService) GenerateAccessToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken validates signature and expiry and returns the claims.
// Any decode, signature or expiry failure maps to ErrInvalidToken.
func (s *JWTService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, s.keyFunc)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// GeneratePasswordResetToken signs a reset token for the user using the
// configured reset TTL.
func (s *JWTService) GeneratePasswordResetToken(userID uuid.UUID) (string, error) {
	claims := &ResetClaims{
		UserIDClaim: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   passwordResetSubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidatePasswordResetToken validates a reset token. Besides signature and
// expiry it requires the "password_reset" subject, rejecting access tokens
// replayed as reset tokens.
func (s *JWTService) ValidatePasswordResetToken(tokenString string) (*ResetClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ResetClaims{}, s.keyFunc)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Subject != passwordResetSubject {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, apperrors.ErrInvalidToken
	}
	return s.secret, nil
}
