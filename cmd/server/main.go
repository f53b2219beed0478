// Package main 是对话服务的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"chatbot-go/internal/config"
	"chatbot-go/internal/handler"
	"chatbot-go/internal/repository"
	"chatbot-go/internal/service"
	"chatbot-go/internal/validator"
	"chatbot-go/pkg/database"
	"chatbot-go/pkg/kafka"
	"chatbot-go/pkg/llm"
	"chatbot-go/pkg/log"
	"chatbot-go/pkg/storage"
	"chatbot-go/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis；未配置 MySQL 时对话只保存在进程内
	var conversationRepo repository.ConversationRepository
	if cfg.Database.MySQL.DSN != "" {
		database.InitMySQL(cfg.Database.MySQL.DSN)
		conversationRepo = repository.NewConversationRepository(database.DB)
	} else {
		log.Warnf("未配置 MySQL，对话仅保存在内存中")
		conversationRepo = repository.NewMemoryConversationRepository()
	}
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	}

	// 4. 可选协作者：图片归档与审计事件
	opts := service.ChatOptions{
		SystemPrompt: cfg.LLM.SystemPrompt,
		Generation:   llm.GenerationFromConfig(cfg.LLM.Generation),
		Validator:    validator.New(cfg.Chat.MaxAttachmentBytes),
	}
	if cfg.MinIO.Endpoint != "" {
		storage.InitMinIO(cfg.MinIO)
		opts.Archiver = storage.Archiver{Bucket: cfg.MinIO.BucketName}
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.Kafka.Brokers != "" {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		opts.Publisher = producer

		// 审计记录落库依赖 MySQL
		if database.DB != nil {
			processor := service.NewChatMemoryProcessor(repository.NewChatMemoryRepository(database.DB))
			go kafka.StartConsumer(consumerCtx, cfg.Kafka, processor)
		}
	}

	// 5. 初始化 Service (依赖注入)
	var jwtManager *token.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	} else {
		log.Warnf("未配置 JWT 密钥，接口不做认证")
	}
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(llm.NewClient(cfg.LLM), conversationService, opts)

	// 6. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.RouterDeps{
		Conversations: conversationService,
		Chat:          chatService,
		JWT:           jwtManager,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	stopConsumer()

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
