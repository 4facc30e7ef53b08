package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	sid := NewSessionID()
	tok, err := NewSessionToken("secret", sid, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, sid, got)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	good, err := NewSessionToken("secret", "s1", time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", "s1", -time.Minute)
	require.NoError(t, err)
	noSID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "s1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sid": "s1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string][2]string{
		"wrong key": {"other", good.Token},
		"expired":   {"secret", expired.Token},
		"no sid":    {"secret", noSID},
		"no exp":    {"secret", noExp},
		"alg none":  {"secret", unsigned},
		"garbage":   {"secret", "not-a-jwt"},
	}
	for name, c := range cases {
		_, err := ParseSessionToken(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidSessionToken, name)
	}
}
