package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

const logoutMessage = "Logout successful. Please remove token from client storage."

// CredentialRepository defines the user lookups and writes needed to
// authenticate and register accounts.
type CredentialRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user types.User) (string, time.Time, error)
}

// AuthService implements login, registration and the current-user lookup.
type AuthService struct {
	users                 CredentialRepository
	tokens                TokenIssuer
	allowSelfAssignedRole bool
	now                   func() time.Time
}

func NewAuthService(users CredentialRepository, tokens TokenIssuer, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:                 users,
		tokens:                tokens,
		allowSelfAssignedRole: cfg.AllowSelfAssignedRole,
		now:                   time.Now,
	}
}

// TokenResponse is returned by a successful login or registration.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	Expiration  time.Time         `json:"expiration"`
	TokenType   string            `json:"token_type"`
	User        types.UserProfile `json:"user"`
}

// RegisterInput carries the self-registration form. Role is optional.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// Login authenticates by username or email and issues a token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (TokenResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return TokenResponse{}, apperror.Validation("username/email and password are required")
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return TokenResponse{}, storeError(err, "user not found")
	}
	if err != nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return TokenResponse{}, apperror.Authentication("invalid username/email or password")
	}
	if !user.IsActive {
		return TokenResponse{}, apperror.Authentication("account is inactive")
	}

	response, err := s.issue(user)
	if err != nil {
		return TokenResponse{}, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return TokenResponse{}, storeError(err, "user not found")
	}
	return response, nil
}

// Register creates an active account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (TokenResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return TokenResponse{}, apperror.Validation("username, email and password are required")
	}

	if len(in.Password) > auth.MaxPasswordBytes {
		return TokenResponse{}, errPasswordTooLong
	}

	role, err := s.registrationRole(in.Role)
	if err != nil {
		return TokenResponse{}, err
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return TokenResponse{}, apperror.Validation("username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return TokenResponse{}, storeError(err, "user not found")
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return TokenResponse{}, apperror.Validation("email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return TokenResponse{}, storeError(err, "user not found")
	}
	if in.Password != in.ConfirmPassword {
		return TokenResponse{}, apperror.Validation("passwords do not match")
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return TokenResponse{}, apperror.Wrap(apperror.KindInternal, "failed to create user", err)
	}

	user, err := s.users.Create(ctx, types.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.Username,
		Role:         role,
		PasswordHash: hashed,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return TokenResponse{}, apperror.Wrap(apperror.KindValidation, conflictMessage(store.Constraint(err)), err)
		}
		return TokenResponse{}, storeError(err, "user not found")
	}

	return s.issue(user)
}

func (s *AuthService) registrationRole(requested string) (types.Role, error) {
	if strings.TrimSpace(requested) == "" {
		return types.RoleEmployee, nil
	}
	role, ok := types.ParseRole(requested)
	if !ok {
		return "", apperror.Validation("invalid role")
	}
	if !s.allowSelfAssignedRole && role != types.RoleEmployee {
		log.Printf("registration requested role %s; assigning %s", role, types.RoleEmployee)
		return types.RoleEmployee, nil
	}
	return role, nil
}

// CurrentUser returns the profile of the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID int) (types.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.UserProfile{}, storeError(err, "user not found")
	}
	return user.Profile(), nil
}

// Logout changes no server state; tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID int) string {
	return logoutMessage
}

func (s *AuthService) issue(user types.User) (TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return TokenResponse{}, apperror.Wrap(apperror.KindInternal, "failed to create token", err)
	}
	return TokenResponse{
		AccessToken: token,
		Expiration:  expiresAt,
		TokenType:   "Bearer",
		User:        user.Profile(),
	}, nil
}
