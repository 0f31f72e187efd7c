package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，叠加环境变量后注入默认值并校验。
// path 为空时不读取文件，仅使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("无法展开配置路径: %w", err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := applyEnvOverrides(&cfg.Global); err != nil {
		return nil, err
	}
	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := resolvePaths(&cfg.Global); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDirectory 用命令行给出的目录覆盖配置，并与文件/环境变量中的目录走同样的校验与路径展开。
// dir 为空时保持原值。
func (c *Config) ApplyDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	c.Global.Directory = dir
	if err := c.Validate(); err != nil {
		return err
	}
	return resolvePaths(&c.Global)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Directory", "./cache")
	v.SetDefault("DefaultExpiration", 60)
}

func applyGlobalDefaults(g *GlobalConfig) {
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	if strings.TrimSpace(g.Directory) == "" {
		g.Directory = "./cache"
	}
}

// resolvePaths 展开 ~ 并将缓存目录转换为绝对路径。
func resolvePaths(g *GlobalConfig) error {
	dir, err := homedir.Expand(g.Directory)
	if err != nil {
		return fmt.Errorf("无法展开缓存目录: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("无法解析缓存目录: %w", err)
	}
	g.Directory = abs

	if g.LogFilePath != "" {
		logPath, err := homedir.Expand(g.LogFilePath)
		if err != nil {
			return fmt.Errorf("无法展开日志路径: %w", err)
		}
		g.LogFilePath = logPath
	}
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			parsed, err := parseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("无法解析 Duration 字段: %w", err)
			}
			return parsed, nil
		case int:
			return secondsToDuration(int64(v))
		case int64:
			return secondsToDuration(v)
		case float64:
			return floatSecondsToDuration(v)
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
