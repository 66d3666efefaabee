package security

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bably/internal/models"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("securepass")
	require.NoError(t, err)
	assert.NotEqual(t, "securepass", hash)

	ok, err := h.Compare(hash, "securepass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "securepass")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: 42, Email: "parent@example.com"}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", claims.Email)
	assert.Equal(t, int64(42), claims.ID)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: 1, Email: "parent@example.com"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: user.Email}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResetTokenIsBoundToPasswordHash(t *testing.T) {
	m := NewTokenManager("secret", 0)
	user := &models.User{ID: 3, Email: "parent@example.com", PasswordHash: "hash-v1"}

	token, err := m.IssueResetToken(user)
	require.NoError(t, err)

	claims, err := m.ParseResetToken(token, "hash-v1")
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Email)

	_, err = m.ParseResetToken(token, "hash-v2")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "reset tokens are not bearer tokens")

	// the hash alone is not enough to forge a reset token
	other := NewTokenManager("another-secret", 0)
	_, err = other.ParseResetToken(token, "hash-v1")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: user.Email, ID: user.ID}).
		SignedString([]byte("hash-v1"))
	require.NoError(t, err)
	_, err = m.ParseResetToken(forged, "hash-v1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDemoPolicy(t *testing.T) {
	p := NewDemoPolicy(" Demo@Demo.com ")

	assert.True(t, p.IsReadOnlyDemoIdentity("demo@demo.com"))
	assert.True(t, p.IsReadOnlyDemoIdentity("DEMO@demo.com"))
	assert.False(t, p.IsReadOnlyDemoIdentity("parent@example.com"))
	assert.Equal(t, "demo@demo.com", p.Email())

	assert.False(t, NewDemoPolicy("").IsReadOnlyDemoIdentity(""))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"), "bucket refills after the window")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:80", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", strings.NewReader(""))
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
