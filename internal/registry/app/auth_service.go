package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash compares a plaintext password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthConfig carries the token signing settings.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// AuthService implements login, logout and session resolution. There is no
// process-global current user; every call resolves the caller from the
// presented token (see middleware.Auth).
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	config   AuthConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, config AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks credentials and opens a session. Unknown email and wrong
// password both return ErrInvalidCredentials without creating a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create session", "error", err, "userID", user.ID)
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sign session token", "error", err, "userID", user.ID)
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	user.LastLogin = &now
	if _, err := s.users.Update(ctx, user); err != nil {
		// Login still succeeds; lastLogin is informational.
		s.logger.WarnContext(ctx, "Failed to record last login", "error", err, "userID", user.ID)
	}

	return user, token, nil
}

// Logout deletes the session behind the token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// CurrentUser resolves the token to its user. Expired or revoked sessions
// return ErrAuthRequired; the expired record itself is left in storage.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrAuthRequired
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrAuthRequired
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("session user: %w", domain.ErrNotFound)
	}
	return user, nil
}

// signToken issues a JWT whose ID claim is the stored session token, so
// logout revocation and lazy expiry both go through the session collection.
func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.Token,
		Subject:   session.UserID,
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) parseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", fmt.Errorf("token is invalid")
	}
	return claims.ID, nil
}
