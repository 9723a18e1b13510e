package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const (
	DefaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 8
	usernameMaxLength = 150
)

// AuthService manages admin accounts and their tokens.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  DefaultTokenTTL,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for token timestamps.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// CreateAdmin stores a new active admin with a bcrypt password hash.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*model.AdminUser, error) {
	ve := &ValidationError{}
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		ve.Add("username", msgRequired)
	case n > usernameMaxLength:
		ve.Add("username", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", usernameMaxLength, n))
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		ve.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.AdminUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, fieldError("username", "A user with that username already exists.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.AdminUser{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	var user model.AdminUser
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Compare password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	expiresAt := now.Add(s.tokenTTL)
	token, err := s.GenerateToken(&types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AdminID:  user.ID,
		Username: user.Username,
		Role:     types.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &types.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// GenerateToken signs claims with HS256.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses an HS256 token and requires the admin role.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != types.RoleAdmin {
		return nil, errors.New("token does not grant admin access")
	}
	return claims, nil
}

// Authenticate validates the token and requires its admin to still exist
// and be active. Token and account failures wrap ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	var user model.AdminUser
	err = s.db.WithContext(ctx).Select("id", "is_active").First(&user, "id = ?", claims.AdminID.String()).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: admin %s no longer exists", ErrInvalidCredentials, claims.AdminID)
	case err != nil:
		return nil, fmt.Errorf("failed to load admin %s: %w", claims.AdminID, err)
	case !user.IsActive:
		return nil, fmt.Errorf("%w: admin %s is inactive", ErrInvalidCredentials, claims.AdminID)
	}
	return claims, nil
}
