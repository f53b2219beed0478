package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"chatbot-go/internal/config"
	"chatbot-go/internal/exchange"
	"chatbot-go/internal/store"
	"chatbot-go/pkg/apiclient"
	"chatbot-go/pkg/database"
	"chatbot-go/pkg/log"
)

const defaultConfigPath = "./configs/config.yaml"

// loadConfig 读取配置并应用命令行覆盖，然后初始化只写文件的日志。
func loadConfig(flags *rootFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := &config.Config{}
	if err := config.Load(path, cfg); err != nil {
		return nil, err
	}
	if flags.store != "" {
		cfg.Client.Store = flags.store
	}
	if flags.transport != "" {
		cfg.Client.Transport = flags.transport
	}
	if flags.baseURL != "" {
		cfg.Client.BaseURL = flags.baseURL
	}

	// 终端被对话占用，日志只写文件
	log.InitQuiet(cfg.Log.Level, cfg.Log.OutputPath)
	return cfg, nil
}

// newAPIClient 创建服务端客户端；没有配置令牌且允许访客时申请访客令牌。
func newAPIClient(ctx context.Context, cfg config.ClientConfig) *apiclient.Client {
	api := apiclient.New(cfg.BaseURL, cfg.Token, &http.Client{Timeout: 90 * time.Second})
	if cfg.Token == "" && cfg.Guest {
		if _, err := api.GuestToken(ctx); err != nil {
			log.Warnw("failed to obtain guest token", "baseUrl", cfg.BaseURL, "error", err)
		}
	}
	return api
}

// openStore 按配置创建持久化适配器，返回的 close 函数释放底层资源。
func openStore(cfg *config.Config, api *apiclient.Client) (store.Store, func(), error) {
	switch cfg.Client.Store {
	case "remote", "":
		return store.NewRemote(api), func() {}, nil
	case "local":
		blobs, err := openBlobs(cfg.Client.Local, cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		local := store.NewLocal(blobs, store.LocalOptions{
			Namespace:        cfg.Client.Local.Namespace,
			MaxConversations: cfg.Client.Local.MaxConversations,
			MaxMessages:      cfg.Client.Local.MaxMessages,
			MaxBlobBytes:     cfg.Client.Local.MaxBlobBytes,
		})
		return local, func() {
			if err := blobs.Close(); err != nil {
				log.Warnw("failed to close local store", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want remote or local)", cfg.Client.Store)
	}
}

func openBlobs(cfg config.LocalStoreConfig, redisCfg config.RedisConfig) (store.BlobStore, error) {
	switch cfg.Backend {
	case "bolt", "":
		return store.OpenBoltBlobs(cfg.Path)
	case "redis":
		return store.NewRedisBlobs(database.NewRedis(redisCfg.Addr, redisCfg.Password, redisCfg.DB)), nil
	default:
		return nil, fmt.Errorf("unknown local backend %q (want bolt or redis)", cfg.Backend)
	}
}

// openExchange 按配置创建交换客户端。
func openExchange(cfg config.ClientConfig, api *apiclient.Client) (exchange.Client, func(), error) {
	switch cfg.Transport {
	case "http", "":
		return exchange.NewHTTPClient(api), func() {}, nil
	case "websocket", "ws":
		ws := exchange.NewWebSocketClient(api)
		return ws, func() { _ = ws.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q (want http or websocket)", cfg.Transport)
	}
}
