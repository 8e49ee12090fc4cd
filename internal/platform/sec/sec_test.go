// Copyright (c) 2026 Nomik. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish2956-mk/getnomik-tech-team/internal/platform/sec"
)

/*
TestPasswordHashing verifies the bcrypt round trip and rejection of wrong
passwords.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
}

/*
TestGenerateSecureToken verifies token length and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := make(map[string]bool, 100)

	for i := 0; i < 100; i++ {
		token, err := sec.GenerateSecureToken(32)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

/*
TestHashToken verifies digests are deterministic and distinct per token.
*/
func TestHashToken(t *testing.T) {
	assert.Equal(t, sec.HashToken("abc"), sec.HashToken("abc"))
	assert.NotEqual(t, sec.HashToken("abc"), sec.HashToken("abd"))
	assert.Len(t, sec.HashToken("abc"), 64) // hex SHA-256
}

/*
TestParseRole covers the role parser and hierarchy comparisons.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		role  sec.AccountRole
		valid bool
	}{
		{"client", "client", sec.RoleClient, true},
		{"advocate", "advocate", sec.RoleAdvocate, true},
		{"admin", "admin", sec.RoleAdmin, true},
		{"unknown", "superuser", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := sec.ParseRole(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.role, role)
		})
	}

	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAdvocate))
	assert.True(t, sec.RoleAdvocate.AtLeast(sec.RoleClient))
	assert.False(t, sec.RoleClient.AtLeast(sec.RoleAdvocate))
}

/*
TestTokenService_RoundTrip verifies issue-then-verify of a session credential.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	service := sec.NewTokenServiceFromKeys(privateKey, &privateKey.PublicKey, "getnomik.com")

	token, err := service.GenerateSessionCredential("account-123", "client", 15*time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifySessionCredential(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", claims.AccountID)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, "getnomik.com", claims.Issuer)
}

/*
TestTokenService_Rejections verifies expired and tampered credentials map to
the sentinel errors.
*/
func TestTokenService_Rejections(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	service := sec.NewTokenServiceFromKeys(privateKey, &privateKey.PublicKey, "getnomik.com")

	expired, err := service.GenerateSessionCredential("account-123", "client", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifySessionCredential(expired)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)

	_, err = service.VerifySessionCredential("garbage")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}
