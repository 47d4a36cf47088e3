package nbi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t, nil)

	token, err := env.tokens.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	// Token reuses the held credential
	token, err = env.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	auth, _, _ := env.nbi.calls()
	assert.Equal(t, int32(1), auth)
}

func TestToken_LazyLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	token, err := env.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestAuthenticate_Rejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.nbi.setRejectLogin(true)

	_, err := env.tokens.Authenticate(context.Background())
	assert.ErrorIs(t, err, types.Error_AuthFailure)
}

func TestAuthenticate_Unreachable(t *testing.T) {
	cfg := Config{AuthenticationURL: "http://127.0.0.1:1/osm/admin/v1/tokens", RequestTimeout: time.Second}
	tm := NewTokenManager(cfg, NewHTTPClient(cfg), nil)

	_, err := tm.Authenticate(context.Background())
	assert.ErrorIs(t, err, types.Error_AuthFailure)
}

func TestRefresh_ReplacesStaleToken(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	stale, err := env.tokens.Authenticate(ctx)
	require.NoError(t, err)

	fresh, err := env.tokens.Refresh(ctx, stale)
	require.NoError(t, err)
	assert.NotEqual(t, stale, fresh)
	assert.Equal(t, "token-2", fresh)
}

func TestRefresh_ConcurrentCallersLoginOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	stale, err := env.tokens.Authenticate(ctx)
	require.NoError(t, err)
	env.nbi.resetCalls()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := env.tokens.Refresh(ctx, stale)
			assert.NoError(t, err)
			assert.Equal(t, "token-2", token)
		}()
	}
	wg.Wait()

	auth, _, _ := env.nbi.calls()
	assert.Equal(t, int32(1), auth)
}
