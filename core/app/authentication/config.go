package authentication

import (
	"errors"
	"strings"
	"time"

	"realtor/core/config"

	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "realtor_session"

	devSecret = "default-session-secret-for-development"
)

// SessionConfig holds the single admin credential and cookie settings
type SessionConfig struct {
	AdminEmail   string
	PasswordHash []byte
	Secret       []byte
	TTL          time.Duration
	Secure       bool
}

// LoadConfig derives the session settings from the app config. A plain
// ADMIN_PASS is hashed once here so logins always go through bcrypt.
func LoadConfig(cfg *config.Config) (*SessionConfig, error) {
	sc := &SessionConfig{
		AdminEmail: strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		Secret:     []byte(cfg.SessionSecret),
		TTL:        cfg.SessionTTL,
		Secure:     cfg.Env == "production",
	}

	switch {
	case cfg.AdminPassHash != "":
		sc.PasswordHash = []byte(cfg.AdminPassHash)
	case cfg.AdminPass != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPass), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		sc.PasswordHash = hash
	}

	if err := ValidateConfig(sc, cfg.Env); err != nil {
		return nil, err
	}
	return sc, nil
}

// ValidateConfig fills development defaults and refuses a production
// deployment without a real secret.
func ValidateConfig(sc *SessionConfig, env string) error {
	if len(sc.Secret) == 0 {
		if env == "production" {
			return errors.New("SESSION_SECRET is required in production")
		}
		sc.Secret = []byte(devSecret)
	}
	if sc.TTL <= 0 {
		sc.TTL = 30 * 24 * time.Hour
	}
	return nil
}
