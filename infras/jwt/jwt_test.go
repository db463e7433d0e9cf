package jwt_test

import (
	"testing"
	"time"

	"toolrent/config"
	"toolrent/infras/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.Claims, key string, method gojwt.SigningMethod) string {
	t.Helper()

	token, err := gojwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return token
}

func TestService_ValidateToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.Issuer = "identity"

	svc := jwt.New(cfg)
	now := time.Now()

	valid := jwt.Claims{
		UserID: "user-1",
		Role:   "member",
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "identity",
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	subjectOnly := valid
	subjectOnly.UserID = ""
	subjectOnly.Subject = "user-2"

	expired := valid
	expired.ExpiresAt = gojwt.NewNumericDate(now.Add(-time.Hour))

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	noUser := valid
	noUser.UserID = ""

	tests := []struct {
		name       string
		token      string
		wantUserID string
		wantErr    error
	}{
		{name: "valid token", token: sign(t, valid, secret, gojwt.SigningMethodHS256), wantUserID: "user-1"},
		{name: "subject used as user id", token: sign(t, subjectOnly, secret, gojwt.SigningMethodHS256), wantUserID: "user-2"},
		{name: "expired token", token: sign(t, expired, secret, gojwt.SigningMethodHS256), wantErr: jwt.ErrExpiredToken},
		{name: "wrong secret", token: sign(t, valid, "other", gojwt.SigningMethodHS256), wantErr: jwt.ErrInvalidToken},
		{name: "wrong algorithm", token: sign(t, valid, secret, gojwt.SigningMethodHS512), wantErr: jwt.ErrInvalidToken},
		{name: "wrong issuer", token: sign(t, wrongIssuer, secret, gojwt.SigningMethodHS256), wantErr: jwt.ErrInvalidToken},
		{name: "missing user", token: sign(t, noUser, secret, gojwt.SigningMethodHS256), wantErr: jwt.ErrInvalidClaim},
		{name: "garbage", token: "not-a-token", wantErr: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, claims.UserID)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer token", header: "Bearer abc.def", want: "abc.def"},
		{name: "empty header", header: "", wantErr: jwt.ErrMissingHeader},
		{name: "basic auth", header: "Basic abc", wantErr: jwt.ErrInvalidHeader},
		{name: "bearer without token", header: "Bearer ", wantErr: jwt.ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.ExtractTokenFromHeader(tt.header)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, token)
		})
	}
}
