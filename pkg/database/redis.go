package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"chatbot-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接
func InitRedis(addr, password string, db int) {
	RDB = NewRedis(addr, password, db)
	log.Info("Redis client connected successfully")
}

// NewRedis 创建并测试一个 Redis 客户端，连接失败时退出。
func NewRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}
	return rdb
}
