package authentication

import (
	"errors"
	"strings"
	"time"

	"realtor/core/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)

type AuthService struct {
	config *SessionConfig
	logger logger.Logger
	now    func() time.Time
}

func NewAuthService(config *SessionConfig, logger logger.Logger) *AuthService {
	return &AuthService{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Login checks the admin credential and returns a signed session token
func (s *AuthService) Login(email, pass string) (string, error) {
	if s.config.AdminEmail == "" || len(s.config.PasswordHash) == 0 {
		s.logger.Warn("Login attempted but no admin credential is configured")
		return "", ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != s.config.AdminEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.config.PasswordHash, []byte(pass)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.Issue(s.config.AdminEmail)
}

// Issue signs an HS256 token for subject
func (s *AuthService) Issue(subject string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
	})
	return token.SignedString(s.config.Secret)
}

// Verify returns the subject of a valid, unexpired token
func (s *AuthService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.Subject != s.config.AdminEmail {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
