package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_breaker_Call(t *testing.T) {
	t.Parallel()
	var (
		ok      = func() error { return nil }
		failing = func() error { return errors.New("broker down") }
	)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cb := New(Config{Window: 4, FailureRatio: 0.5, Cooldown: time.Minute, Probes: 2}).(*breaker)
	cb.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	require.Error(t, cb.Call(failing))
	require.Equal(t, Closed, cb.State())
	require.Error(t, cb.Call(failing))
	require.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpen)
	require.False(t, called)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, Closed, cb.State())
}

func Test_breaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := New(Config{Window: 1, FailureRatio: 1, Cooldown: time.Second, Probes: 1}).(*breaker)
	cb.now = func() time.Time { return now }

	require.Error(t, cb.Call(func() error { return errors.New("x") }))
	require.Equal(t, Open, cb.State())

	now = now.Add(2 * time.Second)
	require.Error(t, cb.Call(func() error { return errors.New("still down") }))
	require.Equal(t, Open, cb.State())
	require.ErrorIs(t, cb.Call(func() error { return nil }), ErrOpen)

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.Equal(t, "closed", cb.State().String())
}
