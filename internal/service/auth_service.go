package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"thermotrack/internal/config"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
	"thermotrack/pkg/utils"
)

type AuthService struct {
	repos *repository.Repositories
	log   *slog.Logger
}

func NewAuthService(repos *repository.Repositories, log *slog.Logger) *AuthService {
	return &AuthService{
		repos: repos,
		log:   log,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"-"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// RegisterInput is a self-service sign-up
type RegisterInput struct {
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Email        string `json:"email" validate:"required,max=255"`
	Password     string `json:"password" validate:"required"`
	Confirmation string `json:"confirmation" validate:"required,eqfield=Password"`
}

// NewUserInput is an account created by an administrator
type NewUserInput struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Email    string      `json:"email" validate:"required,max=255"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"enum"`
}

// Login authenticates by username or email and returns tokens
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResponse, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, apperrors.NewValidationError("please enter both username/email and password")
	}

	user, err := s.repos.Users.FindUserByLogin(ctx, identifier)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewUnauthorizedError("incorrect username or password")
		}
		return nil, err
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorizedError("incorrect username or password")
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.repos.Audit.CreateAuditLog(ctx, &user.ID, "user_login", fmt.Sprintf("User %s logged in", user.Username))
	return resp, nil
}

// Register creates a regular user account and signs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*LoginResponse, error) {
	user, err := s.createUser(ctx, in.Username, in.Email, in.Password, models.RoleUser, func() error {
		return validateStruct(in)
	})
	if err != nil {
		return nil, err
	}

	_ = s.repos.Audit.CreateAuditLog(ctx, &user.ID, "user_registration", fmt.Sprintf("User %s registered", user.Username))
	return s.issueTokens(ctx, user)
}

// CreateUser lets an administrator create an account with any role
func (s *AuthService) CreateUser(ctx context.Context, actor Actor, in NewUserInput) (*UserResponse, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("only administrators can create users")
	}

	user, err := s.createUser(ctx, in.Username, in.Email, in.Password, in.Role, func() error {
		return validateStruct(in)
	})
	if err != nil {
		return nil, err
	}

	_ = s.repos.Audit.CreateAuditLog(ctx, &actor.UserID, "user_create", fmt.Sprintf("Created %s user %s", user.Role, user.Username))
	resp := toUserResponse(user)
	return &resp, nil
}

// EnsureAdmin seeds the configured administrator when no user holds that name
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	taken, err := s.repos.Users.IsUsernameTaken(ctx, cfg.AdminUsername)
	if err != nil || taken {
		return err
	}

	user, err := s.createUser(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin, func() error { return nil })
	if err != nil {
		return err
	}
	s.log.Info("bootstrap administrator created", "user_id", user.ID, "username", user.Username)
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, role models.Role, check func() error) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := check(); err != nil {
		return nil, err
	}
	if !utils.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("please enter a valid email address")
	}
	if !utils.IsStrongPassword(password) {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"password must be at least %d characters and include one uppercase letter, one number and one symbol", utils.MinPasswordLength))
	}

	taken, err := s.repos.Users.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("this username is already taken")
	}
	taken, err = s.repos.Users.IsEmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("this email is already registered")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := utils.GenerateRefreshToken()
	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().UTC().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.repos.Users.CreateRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	}, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.repos.Users.FindRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return "", apperrors.NewUnauthorizedError("invalid or revoked refresh token")
		}
		return "", err
	}

	if time.Now().After(token.ExpiresAt) {
		return "", apperrors.NewUnauthorizedError("refresh token expired")
	}

	accessToken, err := utils.GenerateAccessToken(token.User.ID, string(token.User.Role))
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repos.Users.RevokeRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken))
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}
