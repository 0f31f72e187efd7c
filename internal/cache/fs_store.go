package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Store 以目录为唯一事实来源，每个 key 对应一个记录文件，不维护任何内存索引。
type Store struct {
	basePath          string
	defaultExpiration time.Duration
	version           int8
	logger            logrus.FieldLogger
	now               func() time.Time
}

// NewStore 解析并递归创建缓存目录，失败时直接返回错误。
func NewStore(opts Options) (*Store, error) {
	dir := opts.Directory
	if dir == "" {
		dir = DefaultDirectory
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	expiration := opts.DefaultExpiration
	if expiration == 0 {
		expiration = DefaultExpiration
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Store{
		basePath:          abs,
		defaultExpiration: expiration,
		version:           FormatVersion,
		logger:            logger,
		now:               time.Now,
	}, nil
}

// Dir 返回缓存目录的绝对路径。
func (s *Store) Dir() string {
	return s.basePath
}

// DefaultExpiration 返回 Set 未指定 TTL 时使用的过期时间。
func (s *Store) DefaultExpiration() time.Duration {
	return s.defaultExpiration
}

// NameToPath 将 key 映射为 <dir>/<md5(key)>.tmp。
// 摘要仅用于生成定长、文件系统安全的文件名：摘要相同的不同 key 会共享同一条记录，
// 因此不适用于需要抗碰撞的场景。
func (s *Store) NameToPath(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(s.basePath, hex.EncodeToString(sum[:])+Extension)
}

// Set 写入（或覆盖）key 对应的记录并返回文件路径。
func (s *Store) Set(ctx context.Context, key string, content []byte, opts SetOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	expiration := s.defaultExpiration
	if opts.Expiration != nil {
		expiration = *opts.Expiration
	}

	filePath := s.NameToPath(key)
	data := encodeRecord(s.version, expiration, s.now(), content)

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotWritable, filePath, err)
	}
	_, err = f.Write(data)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotWritable, filePath, err)
	}
	return filePath, nil
}

// Get 返回 key 的正文；记录缺失或无效时返回 false，无效记录会被顺带删除。
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	record, ok, err := s.Lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return record.Content, true, nil
}

// Lookup 与 Get 语义一致，但额外返回记录头信息。
func (s *Store) Lookup(ctx context.Context, key string) (*Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	filePath := s.NameToPath(key)
	record, valid, err := s.check(filePath)
	if err != nil {
		return nil, false, err
	}
	if valid {
		return record, true, nil
	}
	if _, err := s.delete(filePath); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// Remove 删除 key 对应的文件。force 为 false 时仅删除已失效的记录，
// 仍然有效的记录保持不变并返回 false。
func (s *Store) Remove(ctx context.Context, key string, force bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	filePath := s.NameToPath(key)
	if !force {
		_, valid, err := s.check(filePath)
		if err != nil {
			return false, err
		}
		if valid {
			return false, nil
		}
	}
	return s.delete(filePath)
}

// Clear 遍历缓存目录中的所有文件（不按扩展名过滤）。force 为 true 时全部删除，
// 否则只删除无效或无法解析的文件。返回实际删除的文件数；遍历期间消失或无法读取的文件
// 直接跳过，只有删除失败才会中止扫描。
func (s *Store) Clear(ctx context.Context, force bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotReadable, s.basePath, err)
	}

	count, skipped := 0, 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if entry.IsDir() {
			continue
		}

		filePath := filepath.Join(s.basePath, entry.Name())
		if !force {
			_, valid, err := s.check(filePath)
			if err != nil {
				skipped++
				s.logger.WithFields(logrus.Fields{
					"action": "cache_clear_skip",
					"path":   filePath,
				}).WithError(err).Warn("无法读取的缓存文件，跳过")
				continue
			}
			if valid {
				continue
			}
		}

		removed, err := s.delete(filePath)
		if err != nil {
			return count, err
		}
		if removed {
			count++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"action":  "cache_clear",
		"dir":     s.basePath,
		"force":   force,
		"removed": count,
		"skipped": skipped,
	}).Debug("缓存目录清理完成")
	return count, nil
}

// check 读取并校验 filePath 处的记录。文件缺失、为目录或记录头损坏时返回 valid=false 且 err=nil；
// 仅当文件存在却无法读取时返回错误。
func (s *Store) check(filePath string) (*Record, bool, error) {
	record, err := s.read(filePath)
	if err != nil {
		if errors.Is(err, errCorruptHeader) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if record == nil {
		return nil, false, nil
	}
	return record, s.valid(record), nil
}

func (s *Store) valid(record *Record) bool {
	expiration := wholeSeconds(record.Expiration)
	if expiration <= 0 || record.Version != s.version {
		return false
	}
	elapsed := math.Floor(float64(s.now().UnixNano())/float64(time.Second) - float64(record.CreatedAt.Unix()))
	return elapsed <= float64(expiration)
}

// read 返回 filePath 处的记录；文件不存在或为目录时返回 (nil, nil)。
func (s *Store) read(filePath string) (*Record, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotReadable, filePath, err)
	}
	if info.IsDir() {
		return nil, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotReadable, filePath, err)
	}
	return decodeRecord(data)
}

// delete 删除 filePath 处的普通文件，返回是否真正删除了文件。
func (s *Store) delete(filePath string) (bool, error) {
	info, err := os.Lstat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %w", ErrNotDeletable, filePath, err)
	}
	if info.IsDir() {
		return false, nil
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %w", ErrNotDeletable, filePath, err)
	}

	s.logger.WithFields(logrus.Fields{
		"action": "cache_remove",
		"path":   filePath,
	}).Debug("缓存文件已删除")
	return true, nil
}
