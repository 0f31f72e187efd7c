package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/light-cache/light-cache/internal/config"
)

// New 按全局配置构造一个独立的 JSON logger，不修改 logrus 的全局实例。
// 日志文件不可用时退回 stderr 并记录一条 logger_fallback 警告，不视为错误。
func New(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}

	out, fallbackErr := openOutput(cfg)
	logger := &logrus.Logger{
		Out:       out,
		Formatter: newFormatter(),
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
		ExitFunc:  os.Exit,
	}
	if fallbackErr != nil {
		logger.WithFields(fallbackFields(cfg.LogFilePath)).
			WithError(fallbackErr).
			Warn("日志文件不可用，改为输出到 stderr")
	}
	return logger, nil
}

func newFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat:   time.RFC3339Nano,
		DisableHTMLEscape: true,
	}
}

// openOutput 选择日志 Writer。stdout 承载缓存正文，所以未配置文件时写 stderr；
// 配置了文件但无法写入时同样返回 stderr，并附带原因。
func openOutput(cfg config.GlobalConfig) (io.Writer, error) {
	if cfg.LogFilePath == "" {
		return os.Stderr, nil
	}
	if err := ensureWritable(cfg.LogFilePath); err != nil {
		return os.Stderr, err
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}

// ensureWritable 在交给 lumberjack 之前确认日志文件可以追加写入。
func ensureWritable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f.Close()
}

func fallbackFields(path string) logrus.Fields {
	return logrus.Fields{
		"action": "logger_fallback",
		"path":   path,
	}
}
