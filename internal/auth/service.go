package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/logger"
	"github.com/richxcame/pokedex/pkg/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles account business logic
type Service struct {
	repo       RepositoryInterface
	keys       jwtkeys.KeyProvider
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewService creates a new auth service
func NewService(repo RepositoryInterface, keys jwtkeys.KeyProvider, tokenTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		keys:       keys,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Signup creates an account and signs the caller in
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to hash password", err)
	}

	user := &User{Username: req.Username, PasswordHash: string(hash)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, common.NewConflictError("Username already exists")
		}
		return nil, common.NewInternalServerError("failed to create user", err)
	}

	logger.WithContext(ctx).Info("user signed up", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials. Unknown usernames and wrong passwords look the same.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewUnauthorizedError("Invalid credentials")
		}
		return nil, common.NewInternalServerError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("Invalid credentials")
	}

	return s.issue(user)
}

// GetProfile returns the caller's account
func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewUnauthorizedError("User not found")
		}
		return nil, common.NewInternalServerError("failed to load user", err)
	}
	return user, nil
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to sign token", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *Service) generateToken(user *User) (string, error) {
	key, err := s.keys.CurrentSigningKey()
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.ID
	return token.SignedString(key.Secret)
}
