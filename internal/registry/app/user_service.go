package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// UserCreateInput is the validated payload for creating a user.
type UserCreateInput struct {
	Role     domain.Role `json:"role" validate:"required,oneof=community ngo government research"`
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password,omitempty"`
	// Permissions overrides the role defaults when non-empty.
	Permissions []string `json:"permissions,omitempty"`
}

// UserUpdateInput is a partial update; nil fields are left unchanged.
type UserUpdateInput struct {
	Name        *string  `json:"name,omitempty"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email"`
	Permissions []string `json:"permissions,omitempty"`
}

// UserService implements the user collection operations.
type UserService struct {
	users    repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{users: users, validate: validate, logger: logger, now: time.Now}
}

// List returns users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.users.List(ctx, filter)
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create validates the payload and stores a new user. A wallet address is
// generated; permissions default to the role's capability grants.
func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*domain.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if existing, err := s.users.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}

	permissions := in.Permissions
	if len(permissions) == 0 {
		permissions = DefaultPermissions(in.Role)
	}

	user := &domain.User{
		Role:        in.Role,
		Name:        in.Name,
		Email:       in.Email,
		Wallet:      RandomWallet(),
		Permissions: permissions,
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to hash password", "error", err, "email", in.Email)
			return nil, fmt.Errorf("failed to process user creation")
		}
		user.PasswordHash = hash
	}

	return s.users.Create(ctx, user)
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id string, in UserUpdateInput) (*domain.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Permissions != nil {
		user.Permissions = in.Permissions
	}
	return s.users.Update(ctx, user)
}
