package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// AuthPayload is returned by login and register.
type AuthPayload struct {
	Token        string
	RefreshToken string
	User         core.User
}

type AuthService struct {
	users  UserStore
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	email = strings.TrimSpace(email)
	if err := core.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		log.FromContext(ctx).InfoContext(ctx, "Login rejected: unknown email", log.FieldOperation, log.OpLogin)
		return nil, core.ErrInvalidCredentials
	}

	ok, err := auth.CheckPasswordHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		log.FromContext(ctx).InfoContext(ctx, "Login rejected: wrong password",
			log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID)
		return nil, core.ErrInvalidCredentials
	}

	return s.payload(*user)
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthPayload, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := core.ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique index still catches a concurrent registration.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.FromContext(ctx).InfoContext(ctx, "User registered",
		log.FieldOperation, log.OpRegister, log.FieldUserID, user.ID)
	return s.payload(user)
}

// Authenticate verifies a bearer token and returns its claims.
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) payload(user core.User) (*AuthPayload, error) {
	pair, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthPayload{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}
