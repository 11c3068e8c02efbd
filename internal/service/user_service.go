package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/wes-events/internal/audit"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/repository"
	"github.com/weiawesome/wes-events/pkg/log"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateToken(userID, name string) (string, time.Time, error)
	GenerateGuestToken(name string) (string, time.Time, error)
}

// GuestAccount is the shared demo login. A disabled account never matches.
type GuestAccount struct {
	Enabled  bool
	Email    string
	Password string
	Name     string
}

func (g GuestAccount) matches(email, password string) bool {
	return g.Enabled && g.Email != "" &&
		strings.EqualFold(email, g.Email) && password == g.Password
}

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo   repository.UserRepository
	tokens TokenIssuer
	guest  GuestAccount
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens TokenIssuer, guest GuestAccount) UserService {
	return &userServiceImpl{
		repo:   repo,
		tokens: tokens,
		guest:  guest,
	}
}

// Register registers a new user.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	if s.guest.Enabled && strings.EqualFold(req.Email, s.guest.Email) {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")

	resp := user.ToResponse()
	return &resp, nil
}

// Login authenticates a user or the guest account.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	if s.guest.matches(req.Email, req.Password) {
		token, expiresAt, err := s.tokens.GenerateGuestToken(s.guest.Name)
		if err != nil {
			l.Error().Err(err).Msg("failed to generate guest token")
			return nil, err
		}

		audit.Log(ctx, audit.ActionGuestLogin, "", "guest logged in")

		return &domain.AuthResponse{
			Name:      s.guest.Name,
			IsGuest:   true,
			Token:     token,
			ExpiresAt: expiresAt,
		}, nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", email, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, email, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Name)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate token after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")

	return &domain.AuthResponse{
		Name:      user.Name,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Me returns the caller's identity. Members are checked against the store so
// a deleted account cannot keep using an old token.
func (s *userServiceImpl) Me(ctx context.Context, identity domain.Identity) (*domain.Identity, error) {
	if !identity.IsMember() {
		return &identity, nil
	}

	user, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &domain.Identity{UserID: user.ID, Name: user.Name}, nil
}
