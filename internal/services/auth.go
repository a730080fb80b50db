package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/envutil"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthClaims struct {
	UserID  uuid.UUID `json:"uid"`
	IsAdmin bool      `json:"adm"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		Secret: envutil.String("JWT_SECRET", "dev-secret-change-me"),
		TTL:    envutil.Duration("JWT_TTL", 24*time.Hour),
	}
}

type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Verify(token string) (*AuthClaims, error)
}

type authService struct {
	users catalog.UserRepo
	cfg   AuthConfig
	log   *logger.Logger
}

func NewAuthService(users catalog.UserRepo, cfg AuthConfig, baseLog *logger.Logger) AuthService {
	return &authService{
		users: users,
		cfg:   cfg,
		log:   baseLog.With("service", "AuthService"),
	}
}

func (s *authService) Register(ctx context.Context, email, username, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || username == "" || len(password) < 8 {
		return nil, "", fmt.Errorf("email, username and a password of at least 8 characters are required")
	}
	existing, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:    email,
		Username: username,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", "userId", user.ID)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Verify(token string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (s *authService) issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
