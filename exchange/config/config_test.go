package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("EXCHANGE_HTTP_PORT", "9090")
	t.Setenv("KAFKA_ADDRS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("LOG_LEVEL", "warn")

	c := NewConfig(WithWriteTimeout(time.Minute), WithLogLevel(zapcore.DebugLevel))

	require.Equal(t, "0.0.0.0", c.Server.Host)
	require.Equal(t, "9090", c.Server.Port)
	require.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	require.Equal(t, time.Minute, c.Server.WriteTimeout)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Addrs)
	require.True(t, c.Kafka.Enabled())
	require.Equal(t, 2*time.Hour, c.Auth.TTL)
	require.Equal(t, zapcore.DebugLevel, c.Log.LogLevel)
	require.Equal(t, "exchange", c.Database.NameDB)
	require.Equal(t, 20, c.Breaker.Window)

	// built once per process
	require.Equal(t, c, NewConfig())
}
