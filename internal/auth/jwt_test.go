package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", "closetmind-test", time.Hour)

	token, err := manager.GenerateToken("user-123", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	// Subject 与邮箱一致
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "closetmind-test", claims.Issuer)
}

func TestJWTManager_VerifyToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", "test", time.Hour)
	other := NewJWTManager("secret-b", "test", time.Hour)

	token, err := manager.GenerateToken("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestJWTManager_VerifyToken_Expired(t *testing.T) {
	manager := &JWTManager{
		secretKey: []byte("test-secret"),
		issuer:    "test",
		tokenTTL:  -time.Hour,
	}

	token, err := manager.GenerateToken("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestJWTManager_VerifyToken_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", "test", time.Hour)

	_, err := manager.VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing prefix", header: "abc.def.ghi", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "empty header", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
