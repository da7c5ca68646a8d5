// Package service contains the business logic for the Foodgram API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// Field limits for user accounts.
const (
	maxEmailLen = 254
	maxNameLen  = 150

	// bcrypt only looks at the first 72 bytes of a password.
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// UserService implements registration, profiles and password changes.
type UserService struct {
	users   repo.UserRepo
	follows repo.FollowRepo
	cost    int
}

// NewUserService constructs a UserService backed by the provided repos.
func NewUserService(users repo.UserRepo, follows repo.FollowRepo) *UserService {
	return &UserService{users: users, follows: follows, cost: bcrypt.DefaultCost}
}

// Register validates reg, hashes the password and creates the account.
// Returns domain.ErrValidation for invalid input and domain.ErrConflict if
// the email or username is taken.
func (s *UserService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)

	if err := validateRegistration(reg); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	u, err := s.users.Create(ctx, domain.User{
		Email:        reg.Email,
		Username:     reg.Username,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return u, nil
}

// Get returns the profile of user id as seen by viewer (nil for anonymous).
func (s *UserService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.UserService.Get: %w", err)
	}
	profiles, err := s.profiles(ctx, viewer, []domain.User{u})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.UserService.Get: %w", err)
	}
	return profiles[0], nil
}

// Me returns the viewer's own profile. A user never follows themselves, so
// IsSubscribed is always false.
func (s *UserService) Me(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.UserService.Me: %w", err)
	}
	return domain.Profile{User: u}, nil
}

// List returns one page of users and the total count.
func (s *UserService) List(ctx context.Context, viewer *uuid.UUID, p domain.PaginationParams) ([]domain.Profile, int64, error) {
	users, total, err := s.users.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.UserService.List: %w", err)
	}
	profiles, err := s.profiles(ctx, viewer, users)
	if err != nil {
		return nil, 0, fmt.Errorf("service.UserService.List: %w", err)
	}
	return profiles, total, nil
}

// SetPassword replaces the password of user id after checking current.
// Returns domain.ErrValidation if current is wrong or next is invalid.
func (s *UserService) SetPassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.UserService.SetPassword: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("%w: current_password is incorrect", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("service.UserService.SetPassword: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return fmt.Errorf("service.UserService.SetPassword: %w", err)
	}
	return nil
}

// profiles wraps users into Profiles with IsSubscribed computed for viewer
// in a single lookup.
func (s *UserService) profiles(ctx context.Context, viewer *uuid.UUID, users []domain.User) ([]domain.Profile, error) {
	return buildProfiles(ctx, s.follows, viewer, users)
}

func buildProfiles(ctx context.Context, follows repo.FollowRepo, viewer *uuid.UUID, users []domain.User) ([]domain.Profile, error) {
	out := make([]domain.Profile, len(users))
	for i, u := range users {
		out[i] = domain.Profile{User: u}
	}
	if viewer == nil || len(users) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := follows.SubscribedTo(ctx, *viewer, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].IsSubscribed = subscribed[out[i].ID]
	}
	return out, nil
}

// validateRegistration enforces the account field rules.
func validateRegistration(reg domain.Registration) error {
	switch {
	case reg.Email == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case utf8.RuneCountInString(reg.Email) > maxEmailLen:
		return fmt.Errorf("%w: email must be at most %d characters", domain.ErrValidation, maxEmailLen)
	case !isEmail(reg.Email):
		return fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	case reg.Username == "":
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	case utf8.RuneCountInString(reg.Username) > maxNameLen:
		return fmt.Errorf("%w: username must be at most %d characters", domain.ErrValidation, maxNameLen)
	case !usernamePattern.MatchString(reg.Username):
		return fmt.Errorf("%w: username may contain only letters, digits and @.+-_", domain.ErrValidation)
	case strings.EqualFold(reg.Username, "me"):
		return fmt.Errorf("%w: username %q is reserved", domain.ErrValidation, reg.Username)
	case utf8.RuneCountInString(reg.FirstName) > maxNameLen:
		return fmt.Errorf("%w: first_name must be at most %d characters", domain.ErrValidation, maxNameLen)
	case utf8.RuneCountInString(reg.LastName) > maxNameLen:
		return fmt.Errorf("%w: last_name must be at most %d characters", domain.ErrValidation, maxNameLen)
	}
	return validatePassword(reg.Password)
}

func validatePassword(p string) error {
	if p == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(p) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	return nil
}

// isEmail reports whether s is a bare address (no display name).
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// errIsNotFound is a small helper for services that translate a missing
// row into another sentinel.
func errIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
