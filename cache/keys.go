package cache

import "strings"

// KeyBuilder 缓存键构建器
type KeyBuilder struct {
	prefix string
	sep    string
}

// NewKeyBuilder 创建新的键构建器
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
		sep:    ":",
	}
}

// Build 构建缓存键
func (kb *KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.prefix
	}
	return kb.prefix + kb.sep + strings.Join(parts, kb.sep)
}

// Dashboard aggregate keys
var Dashboard = NewKeyBuilder("dashboard")

// DashboardStatsKey the single cached management summary
var DashboardStatsKey = Dashboard.Build("stats")

// KnownKeys every fixed key the application writes; cleared by `cache clear`
func KnownKeys() []string {
	return []string{DashboardStatsKey}
}
