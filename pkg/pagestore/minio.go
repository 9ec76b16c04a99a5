package pagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore MinIO的页面快照存储实现
type MinioStore struct {
	client     *minio.Client // MinIO客户端
	bucketName string        // 存储桶名称
}

// MinioConfig MinIO快照存储配置
type MinioConfig struct {
	Endpoint  string // MinIO服务端点
	AccessKey string // 访问密钥ID
	SecretKey string // 秘密访问密钥
	UseSSL    bool   // 是否使用SSL
	Bucket    string // 存储桶名称
}

// NewMinioStore 创建MinIO快照存储实例
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// 检查存储桶是否存在，不存在则创建
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return &MinioStore{
		client:     client,
		bucketName: cfg.Bucket,
	}, nil
}

// Save 保存一章页面的快照，已存在则覆盖
func (s *MinioStore) Save(key PageKey, html string) error {
	content := []byte(html)
	_, err := s.client.PutObject(
		context.Background(),
		s.bucketName,
		key.ObjectName(),
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/html"},
	)
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %v", err)
	}
	return nil
}

// Get 获取一章页面的快照
func (s *MinioStore) Get(key PageKey) (string, bool, error) {
	obj, err := s.client.GetObject(
		context.Background(),
		s.bucketName,
		key.ObjectName(),
		minio.GetObjectOptions{},
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to get snapshot object: %v", err)
	}
	defer obj.Close()

	var buf strings.Builder
	if _, err := io.Copy(&buf, obj); err != nil {
		// 对象不存在在读取时才会报错
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read snapshot: %v", err)
	}

	return buf.String(), true, nil
}

// Delete 删除一章页面的快照
func (s *MinioStore) Delete(key PageKey) error {
	err := s.client.RemoveObject(
		context.Background(),
		s.bucketName,
		key.ObjectName(),
		minio.RemoveObjectOptions{},
	)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}
	return nil
}

// List 列出已有快照的键
func (s *MinioStore) List() ([]PageKey, error) {
	var keys []PageKey

	objectCh := s.client.ListObjects(
		context.Background(),
		s.bucketName,
		minio.ListObjectsOptions{Recursive: true},
	)

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing snapshots: %v", object.Err)
		}
		if key, ok := parseObjectName(object.Key); ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}
