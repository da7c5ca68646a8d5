package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// TokenIssuer issues and verifies auth tokens. *auth.Issuer satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, auth.Claims, error)
	Parse(token string) (auth.Claims, error)
}

// dummyHash is compared against when the email is unknown so a failed login
// takes the same time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("foodgram-dummy-password"), bcrypt.DefaultCost)

// AuthService implements token login, logout and request authentication.
type AuthService struct {
	users  repo.UserRepo
	tokens repo.TokenRepo
	issuer TokenIssuer
	log    *slog.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens repo.TokenRepo, issuer TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, issuer: issuer, log: log, now: time.Now}
}

// Login exchanges email and password for a signed token.
// Returns domain.ErrUnauthorized if the credentials do not match an account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errIsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, _, err := s.issuer.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return token, nil
}

// Logout revokes the token described by claims until it would have expired.
// Expired revocations are purged on the way; a failed purge is only logged.
func (s *AuthService) Logout(ctx context.Context, claims auth.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("%w: token has no id", domain.ErrUnauthorized)
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("service.AuthService.Logout: %w", err)
	}
	if n, err := s.tokens.PurgeExpired(ctx, s.now()); err != nil {
		s.log.WarnContext(ctx, "purge revoked tokens failed", "error", err)
	} else if n > 0 {
		s.log.DebugContext(ctx, "purged revoked tokens", "count", n)
	}
	return nil
}

// Authenticate verifies token and returns the user id it was issued to.
// Returns domain.ErrUnauthorized for invalid, revoked or orphaned tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, auth.Claims, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return uuid.Nil, auth.Claims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, auth.Claims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return uuid.Nil, auth.Claims{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	if revoked {
		return uuid.Nil, auth.Claims{}, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errIsNotFound(err) {
			return uuid.Nil, auth.Claims{}, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return uuid.Nil, auth.Claims{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	return userID, claims, nil
}
