package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

type UserService struct {
	users UserStore
	now   func() time.Time
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// FindByID returns nil when the user does not exist.
func (s *UserService) FindByID(ctx context.Context, id string) (*core.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Update changes the display name only.
func (s *UserService) Update(ctx context.Context, id, name string) (*core.User, error) {
	name = strings.TrimSpace(name)
	if err := core.ValidateUserName(name); err != nil {
		return nil, err
	}
	return s.users.UpdateUserName(ctx, id, name, s.now().UTC())
}
