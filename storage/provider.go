package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound the key holds no object
var ErrNotFound = errors.New("object not found")

// Provider 存储提供者接口
// Keys are slash-separated relative paths such as photos/2025/03/01/<hash>.jpg
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, key string, file io.Reader) error

	// GetWithContext 从存储获取文件; missing keys yield ErrNotFound
	GetWithContext(ctx context.Context, key string) (io.ReadSeeker, error)

	// DeleteWithContext 从存储删除文件
	DeleteWithContext(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}
