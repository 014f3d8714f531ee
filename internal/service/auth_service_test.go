package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketdesk/internal/domain"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

func TestAuthService_LoginLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Login(ctx, "alice", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = env.auth.Login(ctx, "nobody", "alice-pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	result, err := env.auth.Login(ctx, "alice", "alice-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, domain.RoleRequester, result.User.Role)

	claims, err := env.auth.TokenManager().ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.Token.ID, claims.ID)

	revoked, err := env.auth.revocations.IsRevoked(ctx, result.Token.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, env.auth.Logout(ctx, result.Token))
	revoked, err = env.auth.revocations.IsRevoked(ctx, result.Token.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.auth.ChangePassword(ctx, alice, "wrong", "new-pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	for _, blank := range []string{"", "   ", "\t\n"} {
		err = env.auth.ChangePassword(ctx, alice, "alice-pw", blank)
		assert.True(t, apperrors.IsValidation(err), "%q", blank)
	}
	_, err = env.auth.Authenticate(ctx, "alice", "alice-pw")
	require.NoError(t, err)

	require.NoError(t, env.auth.ChangePassword(ctx, alice, "alice-pw", "new-pw"))
	_, err = env.auth.Authenticate(ctx, "alice", "alice-pw")
	assert.Error(t, err)
	_, err = env.auth.Authenticate(ctx, "alice", "new-pw")
	assert.NoError(t, err)

	me, err := env.auth.Me(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}
