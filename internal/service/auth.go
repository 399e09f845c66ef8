// Package service holds the business logic between HTTP handlers and the
// repositories. Services never touch HTTP types; handlers never touch the
// database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/repository"
)

// AuthService owns registration, password login, and OAuth provisioning.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued session token
// so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an email/password account and returns its profile.
// Duplicate username or email fails with a conflict error and leaves the
// store unchanged. The stored password is a bcrypt hash, never plaintext.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("", "username, email, and password are required")
	}

	// Report which identity conflicts, username checked first. The unique
	// indexes still back this up if two registrations race.
	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err == nil {
		if existing.Username == in.Username {
			return nil, apperror.Conflict("Username already taken")
		}
		return nil, apperror.Conflict("Email already registered")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing user: %w", err)
	}

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Provider: model.ProviderEmail,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates an email/password account by email or username.
//
// The lookup is restricted to EMAIL-provider rows, so a Google-provisioned
// account (empty stored password) can never authenticate here no matter
// what credentials are presented. Unknown identity and wrong password both
// map to 401.
func (s *AuthService) Login(ctx context.Context, emailOrUsername, password string) (*AuthResult, error) {
	user, err := s.users.FindForLogin(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email or username")
		}
		return nil, fmt.Errorf("service/auth: finding login candidate: %w", err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, apperror.Unauthorized("Invalid password")
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGoogle handles the OAuth callback after the code exchange.
// The account is found-or-created by unique email as a store-level upsert;
// first login provisions a GOOGLE-provider row with an empty password and a
// username derived from the email local part.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}
	if err := auth.ValidateGoogleUser(gu); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:      gu.Name,
		Username:  strings.SplitN(gu.Email, "@", 2)[0],
		Email:     gu.Email,
		Password:  "",
		Provider:  model.ProviderGoogle,
		AvatarURL: gu.Picture,
	}
	if err := s.users.UpsertByEmail(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting Google user: %w", err)
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via Google",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}
