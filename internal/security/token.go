package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bably/internal/models"
)

// ErrInvalidToken is returned for any token that fails to verify.
var ErrInvalidToken = errors.New("invalid token")

// ResetTokenTTL bounds how long a password reset link stays usable.
const ResetTokenTTL = time.Hour

// Claims is the payload of a bearer token.
type Claims struct {
	Email string `json:"email"`
	ID    int64  `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager. A zero ttl issues tokens without expiry.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a bearer token for user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	return m.sign(user, m.secret, m.ttl)
}

// Parse verifies a bearer token.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	return m.parse(token, m.secret)
}

// IssueResetToken signs a reset token with the secret plus the user's current
// password hash, so it stops verifying as soon as the password changes.
func (m *TokenManager) IssueResetToken(user *models.User) (string, error) {
	return m.sign(user, m.resetKey(user.PasswordHash), ResetTokenTTL)
}

// ParseResetToken verifies a reset token against the stored hash.
func (m *TokenManager) ParseResetToken(token, passwordHash string) (*Claims, error) {
	return m.parse(token, m.resetKey(passwordHash))
}

func (m *TokenManager) resetKey(passwordHash string) []byte {
	key := make([]byte, 0, len(m.secret)+len(passwordHash))
	key = append(key, m.secret...)
	return append(key, passwordHash...)
}

func (m *TokenManager) sign(user *models.User, key []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Email: user.Email,
		ID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token string, key []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
