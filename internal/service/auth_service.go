package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"binbuddy/internal/model"
	"binbuddy/internal/repository"
	"binbuddy/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrMissingFields      = errors.New("please provide all user details")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountNotFound    = errors.New("account for token no longer exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPasswordTooLong    = utils.ErrPasswordTooLong
)

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*model.User, error)
	Signin(ctx context.Context, email, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	ChangeRole(ctx context.Context, userID uuid.UUID, role string) (*model.User, error)
}

// AuthOptions carries the optional knobs of the auth service
type AuthOptions struct {
	// InitialAdminEmail, when set, gets the admin role at signup
	InitialAdminEmail string
	Logger            *slog.Logger
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     *utils.PasswordHasher
	jwtUtil    *utils.JWTUtil
	adminEmail string
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, jwtUtil *utils.JWTUtil, opts AuthOptions) AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtUtil:    jwtUtil,
		adminEmail: repository.NormalizeEmail(opts.InitialAdminEmail),
		logger:     logger,
	}
}

// Signup creates a new user account. No token is issued; the user signs in separately.
func (s *authService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = repository.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userRole := model.RoleUser
	if s.adminEmail != "" && email == s.adminEmail {
		userRole = model.RoleAdmin
		s.logger.InfoContext(ctx, "registering user as admin via INITIAL_ADMIN_EMAIL", "email", email)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         userRole,
	}

	// The unique constraints decide races the lookup above cannot see
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Signin authenticates a user and returns a JWT token
func (s *authService) Signin(ctx context.Context, email, password string) (*model.User, string, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !match {
		s.logger.WarnContext(ctx, "signin rejected: password mismatch", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to the current account
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve token account: %w", err)
	}
	return user.Public(), nil
}

// ChangePassword re-derives the stored hash after checking the current password
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user by ID: %w", err)
	}

	match, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !match {
		return ErrInvalidCredentials
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// ChangeRole sets the role carried into tokens issued from now on.
// Tokens already issued keep their role until they expire.
func (s *authService) ChangeRole(ctx context.Context, userID uuid.UUID, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.InfoContext(ctx, "role changed", "user_id", userID, "role", role)
	return user.Public(), nil
}
