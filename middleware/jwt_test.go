package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestGenerateToken_Valid(t *testing.T) {
	tok, claims, err := GenerateToken(42, "gm", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "gm", claims.Username)
}

func TestParseToken_Valid(t *testing.T) {
	tok, issued, err := GenerateToken(99, "player", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.AccountID)
	assert.Equal(t, "player", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, _, err := GenerateToken(1, "a", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "wrong-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, _, err := GenerateToken(1, "a", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseToken_ForeignIssuer(t *testing.T) {
	claims := &Claims{AccountID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.jwt", testSecret)
	assert.Error(t, err)
}

func TestParseToken_Empty(t *testing.T) {
	_, err := ParseToken("", testSecret)
	assert.Error(t, err)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	t1, c1, _ := GenerateToken(1, "a", testSecret, time.Hour)
	t2, c2, _ := GenerateToken(1, "a", testSecret, time.Hour)
	assert.NotEqual(t, t1, t2)
	assert.NotEqual(t, c1.ID, c2.ID)
}
