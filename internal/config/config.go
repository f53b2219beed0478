// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
// 服务端（cmd/server）与终端客户端（cmd/chatbot）共用同一份配置文件。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。Secret 为空时服务端不校验 token。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不发布对话审计事件。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。Endpoint 为空时不归档图片。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey       string              `mapstructure:"api_key"`
	BaseURL      string              `mapstructure:"base_url"`
	Model        string              `mapstructure:"model"`
	SystemPrompt string              `mapstructure:"system_prompt"`
	Generation   LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ChatConfig 存储对话组件面向用户的固定文案与附件限制。
type ChatConfig struct {
	WelcomeMessage     string `mapstructure:"welcome_message"`
	FallbackMessage    string `mapstructure:"fallback_message"`
	MaxAttachmentBytes int64  `mapstructure:"max_attachment_bytes"`
}

// ClientConfig 存储终端客户端的配置：持久化方式与传输方式。
type ClientConfig struct {
	Store     string           `mapstructure:"store"`     // remote | local
	Transport string           `mapstructure:"transport"` // http | websocket
	BaseURL   string           `mapstructure:"base_url"`
	Token     string           `mapstructure:"token"`
	Guest     bool             `mapstructure:"guest"`
	Local     LocalStoreConfig `mapstructure:"local"`
}

// LocalStoreConfig 存储本地持久化的配置。
type LocalStoreConfig struct {
	Backend          string `mapstructure:"backend"` // bolt | redis
	Path             string `mapstructure:"path"`
	Namespace        string `mapstructure:"namespace"`
	MaxConversations int    `mapstructure:"max_conversations"`
	MaxMessages      int    `mapstructure:"max_messages"`
	MaxBlobBytes     int    `mapstructure:"max_blob_bytes"`
}

// SetDefaults 注册所有默认值，配置文件中缺失的键使用这些值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "chat-exchanges")
	v.SetDefault("minio.bucket_name", "chat-attachments")
	v.SetDefault("chat.welcome_message", DefaultWelcomeMessage)
	v.SetDefault("chat.fallback_message", DefaultFallbackMessage)
	v.SetDefault("chat.max_attachment_bytes", 5*1024*1024)
	v.SetDefault("client.store", "remote")
	v.SetDefault("client.transport", "http")
	v.SetDefault("client.base_url", "http://localhost:5000")
	v.SetDefault("client.guest", true)
	v.SetDefault("client.local.backend", "bolt")
	v.SetDefault("client.local.path", "chatbot.bolt")
	v.SetDefault("client.local.namespace", "chatbot:conversations")
	v.SetDefault("client.local.max_conversations", 50)
	v.SetDefault("client.local.max_messages", 100)
	v.SetDefault("client.local.max_blob_bytes", 5*1024*1024)
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 环境变量 CHATBOT_<SECTION>_<KEY> 覆盖文件中的值。
func Init(configPath string) {
	if err := Load(configPath, &Conf); err != nil {
		panic(err)
	}
}

// Load 读取配置到 out；configPath 为空时只使用默认值与环境变量。
func Load(configPath string, out *Config) error {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("CHATBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return nil
}
