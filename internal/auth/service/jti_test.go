package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJTIProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("issued ids validate until they expire", func(t *testing.T) {
		s := newTestStore(t)
		now := time.Now()
		p := &JTIProvider{Tokens: s.AccountTokens(), TTL: time.Minute, Now: func() time.Time { return now }}

		jti, err := p.Next(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, jti)

		ok, err := p.Validate(ctx, jti)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = p.Validate(ctx, jti)
		require.NoError(t, err)
		require.True(t, ok, "existence checks do not consume")

		now = now.Add(2 * time.Minute)
		ok, err = p.Validate(ctx, jti)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unknown and empty ids are rejected", func(t *testing.T) {
		p := &JTIProvider{Tokens: newTestStore(t).AccountTokens(), TTL: time.Minute}
		for _, jti := range []string{"", "never-issued"} {
			ok, err := p.Validate(ctx, jti)
			require.NoError(t, err)
			require.False(t, ok)
		}
	})

	t.Run("consume mode is single use", func(t *testing.T) {
		p := &JTIProvider{Tokens: newTestStore(t).AccountTokens(), TTL: time.Minute, ConsumeOnValidate: true}
		jti, err := p.Next(ctx)
		require.NoError(t, err)

		ok, err := p.Validate(ctx, jti)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = p.Validate(ctx, jti)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("ids are unique", func(t *testing.T) {
		p := &JTIProvider{Tokens: newTestStore(t).AccountTokens(), TTL: time.Minute}
		seen := map[string]bool{}
		for range 50 {
			jti, err := p.Next(ctx)
			require.NoError(t, err)
			require.False(t, seen[jti])
			seen[jti] = true
		}
	})
}
