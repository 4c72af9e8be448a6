package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamImports = "loadlogger.imports"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishImportEvent appends one run outcome to the import event stream so
// out-of-process consumers (dashboards, alert pipelines) can follow along.
func PublishImportEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamImports,
		MaxLen: 1000,
		Approx: true,
		Values: payload,
	}).Result()
	return err
}
