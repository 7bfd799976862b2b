package redis_client

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)

	err := Connect(config.RedisConfig{Address: server.Addr()})
	require.NoError(t, err)
	t.Cleanup(Disconnect)

	assert.NotNil(t, Client)
	assert.NotNil(t, QueueConnection)
}

func TestConnectUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	address := server.Addr()
	server.Close()

	err := Connect(config.RedisConfig{Address: address})
	assert.Error(t, err)
	Disconnect()
}
