package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripfriend/backend/internal/models"
)

var testSecret = []byte("test-secret")

func TestIssueAndParseAccessToken(t *testing.T) {
	codec := New(testSecret)

	raw, err := codec.IssueAccessToken("alice", models.AuthorityUser, true, false)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, models.AuthorityUser, claims.Authority)
	require.True(t, claims.Verified)
	require.False(t, claims.Deleted)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRecoveryTokensGetShortTTLs(t *testing.T) {
	codec := New(testSecret)

	access, err := codec.IssueAccessToken("bob", models.AuthorityUser, false, true)
	require.NoError(t, err)
	accessClaims, err := codec.Parse(access)
	require.NoError(t, err)
	require.True(t, accessClaims.Deleted)
	require.WithinDuration(t, time.Now().Add(10*time.Minute), accessClaims.ExpiresAt.Time, 5*time.Second)

	refresh, err := codec.IssueRefreshToken("bob", models.AuthorityUser, false, true)
	require.NoError(t, err)
	refreshClaims, err := codec.Parse(refresh)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), refreshClaims.ExpiresAt.Time, 5*time.Second)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	codec := New(testSecret)

	first, err := codec.IssueAccessToken("carol", models.AuthorityUser, true, false)
	require.NoError(t, err)
	second, err := codec.IssueAccessToken("carol", models.AuthorityUser, true, false)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestParseMalformed(t *testing.T) {
	codec := New(testSecret)

	_, err := codec.Parse("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)

	other := New([]byte("other-secret"))
	raw, err := other.IssueAccessToken("mallory", models.AuthorityUser, false, false)
	require.NoError(t, err)
	_, err = codec.Parse(raw)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestExpiredTokenParsesButIsExpired(t *testing.T) {
	codec := New(testSecret)
	codec.AccessTTL = -time.Minute

	raw, err := codec.IssueAccessToken("dave", models.AuthorityAdmin, true, false)
	require.NoError(t, err)

	claims, err := codec.Parse(raw)
	require.NoError(t, err, "expiry must not make a token malformed")
	require.Equal(t, "dave", claims.Subject)

	require.True(t, codec.IsExpired(raw))
}

func TestIsExpiredFailsSafe(t *testing.T) {
	codec := New(testSecret)
	require.True(t, codec.IsExpired("garbage"))
}

func TestProjections(t *testing.T) {
	codec := New(testSecret)

	raw, err := codec.IssueAccessToken("erin", models.AuthorityAdmin, true, true)
	require.NoError(t, err)

	username, err := codec.ExtractUsername(raw)
	require.NoError(t, err)
	require.Equal(t, "erin", username)

	authority, err := codec.ExtractAuthority(raw)
	require.NoError(t, err)
	require.Equal(t, models.AuthorityAdmin, authority)

	verified, err := codec.ExtractVerified(raw)
	require.NoError(t, err)
	require.True(t, verified)

	recovering, err := codec.IsRecoveryToken(raw)
	require.NoError(t, err)
	require.True(t, recovering)

	_, err = codec.ExtractUsername("garbage")
	require.ErrorIs(t, err, ErrTokenMalformed)
}
