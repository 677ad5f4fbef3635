// internal/common/database/database_test.go
package database

import (
	"context"
	"testing"

	"freelancer-analytics/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}

func TestRedisClient_PingFails(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	c := NewRedis(config.RedisConfig{Address: addr})
	defer c.Close()
	err = c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestNewPostgres_AppliesPool(t *testing.T) {
	c, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p", Database: "analytics",
		SSLMode: "disable", MaxConnections: 3, MaxIdle: 1,
	})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "postgres", c.DB.DriverName())
	assert.Equal(t, 3, c.DB.Stats().MaxOpenConnections)
}
