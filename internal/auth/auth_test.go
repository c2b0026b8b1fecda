package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HASH TESTS

const (
	testPassword = "cheetohDeadbolt123"
	altPassword  = "cheetohDeadbolt124"
)

func TestHashIsNotPlaintext(t *testing.T) {
	hashed, err := HashPassword(testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, hashed)
}

func TestCheckPasswordHash(t *testing.T) {
	hashed, err := HashPassword(testPassword)
	require.NoError(t, err)

	tests := []struct {
		name      string
		password  string
		hash      string
		wantMatch bool
		wantErr   bool
	}{
		{name: "correct password", password: testPassword, hash: hashed, wantMatch: true},
		{name: "wrong password", password: altPassword, hash: hashed, wantMatch: false},
		{name: "empty password", password: "", hash: hashed, wantMatch: false},
		{name: "malformed hash", password: testPassword, hash: "not-a-hash", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := CheckPasswordHash(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, match)
		})
	}
}

// JWT TESTS

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("very-secret-secret")
	pair, err := issuer.Issue("user-1", "ana@example.com")
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	for _, tok := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := issuer.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "ana@example.com", claims.Email)
		assert.Equal(t, "user-1", claims.Subject)
	}
}

func TestTokenLifetimes(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	issuer := NewTokenIssuer("very-secret-secret").WithClock(func() time.Time { return now })

	pair, err := issuer.Issue("user-1", "ana@example.com")
	require.NoError(t, err)

	claims, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(59*time.Minute), claims.ExpiresAt.Time, 0)

	now = start.Add(60 * time.Minute)
	_, err = issuer.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify(pair.RefreshToken)
	assert.NoError(t, err)

	now = start.Add(25 * time.Hour)
	_, err = issuer.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer("very-secret-secret")
	pair, err := issuer.Issue("user-1", "ana@example.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("another-secret").Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Same secret, different algorithm.
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("very-secret-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing token", header: "Bearer ", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "no header", header: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			got, err := GetBearerToken(h)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
