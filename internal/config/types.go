package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒数与 Go Duration 字符串。
type Duration time.Duration

// maxDurationSeconds 为 time.Duration 能表示的最大整秒数，超出即视为非法配置。
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// UnmarshalText 使 Viper 与环境变量可以识别诸如 "30s"、"5m"、"60" 或 "0.5" 等写法。
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// parseDuration 依次尝试 Go Duration 字符串、整数秒（含 0x 十六进制）与浮点秒。
func parseDuration(value string) (Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		return Duration(parsed), nil
	}

	if intVal, err := parseInt(raw); err == nil {
		return secondsToDuration(intVal)
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return floatSecondsToDuration(seconds)
	}

	return 0, fmt.Errorf("invalid duration value: %s", raw)
}

// secondsToDuration 将整数秒转换为 Duration，超出可表示范围时返回错误而不是回绕。
func secondsToDuration(seconds int64) (Duration, error) {
	if seconds > maxDurationSeconds || seconds < -maxDurationSeconds {
		return 0, fmt.Errorf("duration out of range: %ds", seconds)
	}
	return Duration(time.Duration(seconds) * time.Second), nil
}

// floatSecondsToDuration 与 secondsToDuration 相同，但接受小数秒。
func floatSecondsToDuration(seconds float64) (Duration, error) {
	if math.IsNaN(seconds) || math.Abs(seconds) > float64(maxDurationSeconds) {
		return 0, fmt.Errorf("duration out of range: %gs", seconds)
	}
	return Duration(time.Duration(seconds * float64(time.Second))), nil
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述日志与缓存目录等运行参数。
type GlobalConfig struct {
	LogLevel          string   `mapstructure:"LogLevel"`
	LogFilePath       string   `mapstructure:"LogFilePath"`
	LogMaxSize        int      `mapstructure:"LogMaxSize"`
	LogMaxBackups     int      `mapstructure:"LogMaxBackups"`
	LogCompress       bool     `mapstructure:"LogCompress"`
	Directory         string   `mapstructure:"Directory"`
	DefaultExpiration Duration `mapstructure:"DefaultExpiration"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}
