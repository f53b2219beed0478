package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	bolt "go.etcd.io/bbolt"
)

// BlobStore 是本地存储依赖的键值持久化：一个固定命名空间下保存一整块序列化数据。
type BlobStore interface {
	// Load 返回 key 对应的数据；不存在时返回 nil, nil。
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var blobBucket = []byte("chatbot")

// BoltBlobs 将数据保存在单个 BoltDB 文件中。
type BoltBlobs struct {
	db *bolt.DB
}

// OpenBoltBlobs 打开（必要时创建）path 处的 BoltDB 文件。
func OpenBoltBlobs(path string) (*BoltBlobs, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}
	return &BoltBlobs{db: db}, nil
}

func (b *BoltBlobs) Load(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(blobBucket).Get([]byte(key)); v != nil {
			// v 只在事务内有效
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (b *BoltBlobs) Save(_ context.Context, key string, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobBucket).Put([]byte(key), data)
	})
}

func (b *BoltBlobs) Delete(_ context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobBucket).Delete([]byte(key))
	})
}

func (b *BoltBlobs) Close() error {
	return b.db.Close()
}

// RedisBlobs 将数据保存在 Redis 的一个字符串键中，适合多台终端共享历史。
type RedisBlobs struct {
	rdb *redis.Client
}

// NewRedisBlobs 使用已连接的 Redis 客户端。
func NewRedisBlobs(rdb *redis.Client) *RedisBlobs {
	return &RedisBlobs{rdb: rdb}
}

func (r *RedisBlobs) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (r *RedisBlobs) Save(ctx context.Context, key string, data []byte) error {
	return r.rdb.Set(ctx, key, data, 0).Err()
}

func (r *RedisBlobs) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func (r *RedisBlobs) Close() error {
	return r.rdb.Close()
}
