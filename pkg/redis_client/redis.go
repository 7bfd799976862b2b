package redis_client

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client
var QueueConnection rmq.Connection

func Connect(cfg config.RedisConfig) error {
	if cfg.Password == "" {
		Client = redis.NewClient(&redis.Options{
			Addr: cfg.Address,
			DB:   cfg.Database,
		})
	} else {
		Client = redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.Database,
		})
	}

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	QueueConnection, err = rmq.OpenConnectionWithRedisClient("tayobell", Client, nil)
	if err != nil {
		return err
	}

	return nil
}

func Disconnect() {
	if Client == nil {
		return
	}

	_ = Client.Close()
}
