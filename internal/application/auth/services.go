package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clausewise/clausewise/internal/application"
	domain "github.com/clausewise/clausewise/internal/domain/users"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrWeakPassword is returned on registration with a too-short password.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// ErrInvalidEmail is returned when the email fails basic shape checks.
var ErrInvalidEmail = errors.New("invalid email address")

// Service implements use-cases untuk auth
type Service struct {
	Users     domain.Repository
	JWTSecret []byte
	TokenTTL  time.Duration
	Clock     application.Clock
}

type RegisterCommand struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type TokenResult struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(cmd.Password) < 8 {
		return nil, ErrWeakPassword
	}

	if existing, err := s.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           domain.UserID(uuid.New().String()),
		Email:        email,
		FullName:     strings.TrimSpace(cmd.FullName),
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password and issues an HS256 token.
func (s *Service) Login(ctx context.Context, email, password string) (TokenResult, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenResult{}, ErrInvalidCredentials
		}
		return TokenResult{}, err
	}
	if !u.IsActive {
		return TokenResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return TokenResult{}, ErrInvalidCredentials
	}

	now := s.Clock.Now()
	exp := now.Add(s.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   string(u.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return TokenResult{}, err
	}
	return TokenResult{Token: token, TokenType: "bearer", ExpiresAt: exp, User: u}, nil
}

// GetUser returns the account behind an authenticated request.
func (s *Service) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.Users.GetByID(ctx, id)
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	host := email[at+1:]
	return strings.Contains(host, ".") && !strings.ContainsAny(email, " \t\n")
}
