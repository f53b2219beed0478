// Package storage 提供了与对象存储服务（如 MinIO）交互的功能，用于归档用户上传的图片。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"chatbot-go/internal/config"
	"chatbot-go/internal/model"
	"chatbot-go/pkg/log"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}

	log.Info("MinIO 客户端初始化成功")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	}
}

// Archiver 将附件写入一个固定的存储桶。
type Archiver struct {
	Bucket string
}

// Archive 上传附件并返回对象名：<owner>/<yyyymmdd>/<message id>.<ext>。
func (a Archiver) Archive(ctx context.Context, ownerID string, att *model.Attachment) (string, error) {
	if MinioClient == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	if ownerID == "" {
		ownerID = "anonymous"
	}
	objectName := path.Join(ownerID, time.Now().Format("20060102"), model.NewMessageID()+extension(att.MediaType))
	_, err := MinioClient.PutObject(ctx, a.Bucket, objectName, bytes.NewReader(att.Data), att.Size(), minio.PutObjectOptions{
		ContentType: att.MediaType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	return objectName, nil
}

func extension(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
