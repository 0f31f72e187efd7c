package cache

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// FormatVersion 为当前记录格式版本，版本不一致的记录一律视为无效，不做迁移。
	FormatVersion int8 = 2

	// Extension 为缓存文件扩展名。
	Extension = ".tmp"

	// DefaultDirectory 为未指定目录时使用的相对路径。
	DefaultDirectory = "cache"

	// DefaultExpiration 为未指定默认 TTL 时使用的过期时间。
	DefaultExpiration = 60 * time.Second
)

// Options 控制 Store 的目录、默认 TTL 与日志输出。
type Options struct {
	// Directory 为记录所在目录，不存在时递归创建；为空时使用 DefaultDirectory。
	Directory string
	// DefaultExpiration 在 Set 未指定 TTL 时生效；为 0 时使用 DefaultExpiration。
	DefaultExpiration time.Duration
	// Logger 接收删除与清理的调试日志；为 nil 时丢弃。
	Logger logrus.FieldLogger
}

// SetOptions 控制单次写入。Expiration 为 nil 时使用 Store 的默认 TTL，
// 显式传入 0 或负值会写入一条立即失效的记录。
type SetOptions struct {
	Expiration *time.Duration
}

// ExpireIn 构造指定 TTL 的 SetOptions。
func ExpireIn(d time.Duration) SetOptions {
	return SetOptions{Expiration: &d}
}

var (
	// ErrNotWritable 表示记录文件无法创建或写入。
	ErrNotWritable = errors.New("cache file is not writable")
	// ErrNotReadable 表示记录文件存在但无法读取。
	ErrNotReadable = errors.New("cache file is not readable")
	// ErrNotDeletable 表示记录文件存在但无法删除。
	ErrNotDeletable = errors.New("cache file is not deletable")
)
