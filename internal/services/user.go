package services

import (
	"context"

	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates account administration use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, storeError(err, "user not found")
	}
	return users, total, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, storeError(err, "user not found")
	}
	return user, nil
}

// SetRole changes the role of an account.
func (s *UserService) SetRole(ctx context.Context, id int, role string) (types.User, error) {
	parsed, ok := types.ParseRole(role)
	if !ok {
		return types.User{}, apperror.Validation("invalid role")
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	user.Role = parsed
	user, err = s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, storeError(err, "user not found")
	}
	return user, nil
}

// SetActive enables or disables login for an account. Tokens already
// issued stay valid until they expire.
func (s *UserService) SetActive(ctx context.Context, id int, active bool) (types.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	user.IsActive = active
	user, err = s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, storeError(err, "user not found")
	}
	return user, nil
}
