package auth

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"github.com/YuriiKoshliak/contacts-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrResetExpired       = errors.New("password reset token expired")
	ErrResetUsed          = errors.New("password reset token already used")
)

// Config holds token signing configuration.
type Config struct {
	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration
	ResetTokenTTL   time.Duration
}

// Service handles all authentication operations
type Service struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	resetTTL   time.Duration

	users  repository.UserRepository
	resets repository.PasswordResetRepository
}

// NewService creates a new authentication service
func NewService(cfg Config, users repository.UserRepository, resets repository.PasswordResetRepository) *Service {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.EmailTokenTTL == 0 {
		cfg.EmailTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.ResetTokenTTL == 0 {
		cfg.ResetTokenTTL = time.Hour
	}

	return &Service{
		jwtSecret:  cfg.JWTSecret,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		emailTTL:   cfg.EmailTokenTTL,
		resetTTL:   cfg.ResetTokenTTL,
		users:      users,
		resets:     resets,
	}
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=5,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is the response to a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a new unverified user with a hashed password. The
// avatar defaults to the Gravatar for the email address.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	_, err := s.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		AvatarURL:    gravatarURL(req.Email),
	}

	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Login authenticates with email/password and issues a token pair.
// Unverified accounts are rejected.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a refresh token into a fresh token pair. The presented
// token must match the one stored for the user; a mismatch clears the
// stored token so a stolen old token cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, ScopeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to clear refresh token: %w", err)
		}
		return nil, ErrInvalidToken
	}

	return s.issueTokenPair(ctx, user)
}

// Authenticate validates an access token and returns fresh user data.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.parseToken(accessToken, ScopeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return user, nil
}

// EmailVerificationToken mints the token embedded in confirmation links.
func (s *Service) EmailVerificationToken(user *models.User) (string, error) {
	token, _, err := s.generateToken(user.ID, user.Email, ScopeEmail, s.emailTTL)
	return token, err
}

// VerifyEmail confirms the user named by an email-scoped token. Returns
// true when the account was already verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.parseToken(token, ScopeEmail)
	if err != nil {
		return false, err
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, ErrUserNotFound
	} else if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	if user.Verified {
		return true, nil
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return false, fmt.Errorf("failed to mark verified: %w", err)
	}

	return false, nil
}

// FindUserByEmail finds a user by email (case-insensitive).
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// RequestPasswordReset creates a reset token for the account, when one
// exists. Returns (nil, nil) for unknown emails so callers cannot tell
// whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Opaque random token; long enough that guessing is hopeless.
	tokenStr := uuid.New().String() + uuid.New().String() + uuid.New().String()

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     tokenStr,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}

	if err := s.resets.CreateReset(ctx, &reset); err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return &reset, nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password.
// Any stored refresh token is cleared so existing sessions cannot be
// extended with the old credentials.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.GetResetByToken(ctx, token)
	if errors.Is(err, repository.ErrResetNotFound) {
		return ErrInvalidToken
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	now := time.Now().UTC()
	if reset.Used() {
		return ErrResetUsed
	}
	if reset.Expired(now) {
		return ErrResetExpired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, reset.UserID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, reset.UserID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	if err := s.resets.MarkUsed(ctx, reset.ID, now); err != nil {
		return fmt.Errorf("failed to mark reset used: %w", err)
	}

	return nil
}

// issueTokenPair mints access and refresh tokens and stores the refresh
// token for rotation checks.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.generateToken(user.ID, user.Email, ScopeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.generateToken(user.ID, user.Email, ScopeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

// gravatarURL builds the Gravatar URL for an email address.
func gravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", hash)
}
