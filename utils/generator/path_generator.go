package generator

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Key prefixes for stored objects
const (
	PrefixPhotos  = "photos"
	PrefixAvatars = "avatars"
)

// PathGenerator builds content-addressed storage keys
type PathGenerator struct{}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{}
}

// StorageIdentifiers 存储标识对
type StorageIdentifiers struct {
	Identifier  string // short hash, e.g. a1b2c3d4e5f6a7b8
	StoragePath string // e.g. photos/2024/01/15/a1b2c3d4e5f6a7b8.jpg
}

// Generate keys an object under prefix/YYYY/MM/DD/<hash><ext>.
// Identical content on the same day maps to the same key.
func (pg *PathGenerator) Generate(prefix, fileHash, ext string, uploadTime time.Time) StorageIdentifiers {
	hash := fileHash
	if len(hash) > 32 {
		hash = hash[:32]
	}
	datePath := uploadTime.UTC().Format("2006/01/02")

	return StorageIdentifiers{
		Identifier:  hash,
		StoragePath: fmt.Sprintf("%s/%s/%s%s", prefix, datePath, hash, ext),
	}
}

// ParsePrefix returns the leading key segment
func (pg *PathGenerator) ParsePrefix(storagePath string) string {
	parts := strings.SplitN(strings.TrimLeft(storagePath, "/"), "/", 2)
	return parts[0]
}

// IdentifierFromPath strips directories and extension
func (pg *PathGenerator) IdentifierFromPath(storagePath string) string {
	base := path.Base(storagePath)
	return strings.TrimSuffix(base, path.Ext(base))
}
