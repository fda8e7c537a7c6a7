package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- JWT Tests ---

func TestJWTManager(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	t.Run("round trip user token", func(t *testing.T) {
		userID := uuid.New()
		token, err := mgr.GenerateToken(RealmUser, userID, "player@example.com")
		require.NoError(t, err)

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.Equal(t, RealmUser, claims.Realm)
		assert.Equal(t, "player@example.com", claims.Email)
	})

	t.Run("unknown realm rejected at generation", func(t *testing.T) {
		_, err := mgr.GenerateToken(Realm("service"), uuid.New(), "")
		assert.Error(t, err)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmUser, uuid.New(), "")
		require.NoError(t, err)

		other := NewJWTManager("different-secret", time.Hour, time.Hour)
		_, err = other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute, -time.Minute)
		token, err := expired.GenerateToken(RealmUser, uuid.New(), "")
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := mgr.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})
}

func TestValidateTokenForRealm(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	t.Run("matching realm", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "")
		require.NoError(t, err)

		claims, err := mgr.ValidateTokenForRealm(token, RealmAdmin)
		require.NoError(t, err)
		assert.Equal(t, RealmAdmin, claims.Realm)
	})

	t.Run("user token on admin realm", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmUser, uuid.New(), "")
		require.NoError(t, err)

		_, err = mgr.ValidateTokenForRealm(token, RealmAdmin)
		assert.Error(t, err)
	})
}
