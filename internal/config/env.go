package config

import (
	"github.com/caarlos0/env/v11"
)

// envOverrides 描述可通过环境变量覆盖的字段；未设置的变量保持零值（指针为 nil）。
type envOverrides struct {
	Directory         string    `env:"LIGHT_CACHE_DIR"`
	DefaultExpiration *Duration `env:"LIGHT_CACHE_DEFAULT_EXPIRATION"`
	LogLevel          string    `env:"LIGHT_CACHE_LOG_LEVEL"`
	LogFilePath       string    `env:"LIGHT_CACHE_LOG_FILE"`
}

// applyEnvOverrides 在文件配置之上叠加环境变量，优先级高于配置文件。
func applyEnvOverrides(g *GlobalConfig) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return wrapFieldError("env", err)
	}

	if overrides.Directory != "" {
		g.Directory = overrides.Directory
	}
	if overrides.DefaultExpiration != nil {
		g.DefaultExpiration = *overrides.DefaultExpiration
	}
	if overrides.LogLevel != "" {
		g.LogLevel = overrides.LogLevel
	}
	if overrides.LogFilePath != "" {
		g.LogFilePath = overrides.LogFilePath
	}
	return nil
}
