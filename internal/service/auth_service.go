package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/auth"
	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// AuthService is the identity provider: it registers users, checks
// credentials and issues the opaque caller identity (a signed token)
// the rest of the system trusts.
type AuthService struct {
	users         UserRepository
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenManager
	tokenTTL      time.Duration
	rememberMeTTL time.Duration
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager, tokenTTL, rememberMeTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		tokenTTL:      tokenTTL,
		rememberMeTTL: rememberMeTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username", "must not be empty")
	}
	if reason := auth.ValidatePassword(password); reason != "" {
		return nil, NewValidationError("password", reason)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, NewConflict("could not hash password", err)
	}

	user := &models.User{Username: username, Password: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("username", "email already registered")
		}
		return nil, NewConflict("could not create user", err)
	}

	logger.Info("Service: user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresIn time.Duration
}

// Login verifies the credentials and issues a token. Unknown handle and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string, rememberMe bool) (*LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorized("invalid credentials")
		}
		return nil, NewConflict("could not look up user", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, NewUnauthorized("invalid credentials")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Service: could not update last login", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	ttl := s.tokenTTL
	if rememberMe {
		ttl = s.rememberMeTTL
	}
	token, err := s.tokens.Generate(user.ID, ttl)
	if err != nil {
		return nil, NewConflict("could not issue token", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresIn: ttl}, nil
}

// UpdateProfile changes the password and/or handle after re-verifying
// the current password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, currentPassword, newPassword, newUsername string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("user", userID)
		}
		return NewConflict("could not look up user", err)
	}

	if !s.hasher.Verify(currentPassword, user.Password) {
		return NewUnauthorized("current password is incorrect")
	}

	changed := false
	if newPassword != "" {
		if reason := auth.ValidatePassword(newPassword); reason != "" {
			return NewValidationError("password", reason)
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return NewConflict("could not hash password", err)
		}
		user.Password = hash
		changed = true
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername != "" && newUsername != user.Username {
		user.Username = newUsername
		changed = true
	}

	if !changed {
		return NewValidationError("profile", "no updates provided")
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return NewValidationError("username", "email already taken")
		}
		return NewConflict("could not update profile", err)
	}
	return nil
}
