package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/jask/jaskcalc/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func TestInMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "barrenado-d")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "barrenado-d", "10"))
	v, ok, err := s.Get(ctx, "barrenado-d")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10", v)

	require.NoError(t, s.MultiSet(ctx, []storage.Entry{
		{Key: "barrenado-vc", Value: "100"},
		{Key: "barrenado-n", Value: "3183"},
	}))
	got, err := s.MultiGet(ctx, []string{"barrenado-d", "barrenado-n", "barrenado-pb", "barrenado-vc"})
	require.NoError(t, err)
	assert.Equal(t, []storage.Entry{
		{Key: "barrenado-d", Value: "10"},
		{Key: "barrenado-n", Value: "3183"},
		{Key: "barrenado-vc", Value: "100"},
	}, got)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = time.Hour
	cfg.Logger = zaptest.NewLogger(t)

	s, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "user-medida", "im"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "user-medida")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "im", v)
}

func TestUseAfterClose(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	err = s.Set(context.Background(), "k", "v")
	require.ErrorIs(t, err, storage.ErrClosed)
}

func TestRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
}
