package services

import (
	"errors"
	"time"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/utils/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Use the JWTClaims from token package
type JWTClaims = token.JWTClaims

// PasswordHasher turns a raw password into a stored hash and checks it back.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) error
}

type AuthServiceInterface interface {
	PasswordHasher
	Login(db *database.Database, username, password string) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	Authenticate(db *database.Database, tokenString string) (models.User, error)
}

type AuthService struct {
	jwtSecret     []byte
	jwtExpiration time.Duration
	cost          int
}

func NewAuthService(jwtSecret string, jwtExpirationHours int) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: time.Duration(jwtExpirationHours) * time.Hour,
		cost:          bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func (s *AuthService) Login(db *database.Database, username, password string) (string, error) {
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", ErrInactiveUser
	}

	return token.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiration)
}

// ValidateToken uses the token utility to validate tokens
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := token.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate validates the token and loads the user it names. Tokens for
// deleted or deactivated users are rejected.
func (s *AuthService) Authenticate(db *database.Database, tokenString string) (models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, ErrInactiveUser
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
