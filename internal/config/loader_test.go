package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestLoadFailsWithMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("不存在的配置文件应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
Directory = "./data"
DefaultExpiration = "boom"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsIntegerSeconds(t *testing.T) {
	path := writeTempConfig(t, `
Directory = "./data"
DefaultExpiration = 600
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.DefaultExpiration.DurationValue() != 10*time.Minute {
		t.Fatalf("整数秒应被解析为 10m，得到 %s", cfg.Global.DefaultExpiration.DurationValue())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIGHT_CACHE_DIR", dir)
	t.Setenv("LIGHT_CACHE_DEFAULT_EXPIRATION", "90s")
	t.Setenv("LIGHT_CACHE_LOG_LEVEL", "WARN")

	cfg, err := Load(fixturePath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.Directory != dir {
		t.Fatalf("环境变量应覆盖目录，得到 %s", cfg.Global.Directory)
	}
	if cfg.Global.DefaultExpiration.DurationValue() != 90*time.Second {
		t.Fatalf("环境变量应覆盖 TTL，得到 %s", cfg.Global.DefaultExpiration.DurationValue())
	}
	if cfg.Global.LogLevel != "warn" {
		t.Fatalf("日志级别应被标准化为小写，得到 %s", cfg.Global.LogLevel)
	}
}

func TestEnvRejectsInvalidExpiration(t *testing.T) {
	for _, raw := range []string{"later", "10000000000"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("LIGHT_CACHE_DEFAULT_EXPIRATION", raw)
			_, err := Load("")
			var fieldErr FieldError
			if !errors.As(err, &fieldErr) || fieldErr.Field != "env" {
				t.Fatalf("无效的环境变量应返回 env 字段错误，得到 %v", err)
			}
		})
	}
}

func TestLoadRejectsOverflowingSeconds(t *testing.T) {
	path := writeTempConfig(t, `
Directory = "./data"
DefaultExpiration = 10000000000
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("超出 Duration 范围的秒数应失败而不是回绕为负值")
	}
}

func TestApplyDirectoryExpandsAndValidates(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	cfg := validConfig()
	if err := cfg.ApplyDirectory("~/override"); err != nil {
		t.Fatalf("ApplyDirectory 返回错误: %v", err)
	}
	if cfg.Global.Directory != filepath.Join(home, "override") {
		t.Fatalf("~ 应展开为 HOME，得到 %s", cfg.Global.Directory)
	}

	before := cfg.Global.Directory
	if err := cfg.ApplyDirectory("  "); err != nil {
		t.Fatalf("空目录应保持原值: %v", err)
	}
	if cfg.Global.Directory != before {
		t.Fatalf("空目录不应覆盖配置，得到 %s", cfg.Global.Directory)
	}

	cfg.Global.DefaultExpiration = 0
	if err := cfg.ApplyDirectory("./other"); err == nil {
		t.Fatalf("ApplyDirectory 应执行配置校验")
	}
}

func TestLoadExpandsHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	path := writeTempConfig(t, `Directory = "~/lightcache"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.Directory != filepath.Join(home, "lightcache") {
		t.Fatalf("~ 应展开为 HOME，得到 %s", cfg.Global.Directory)
	}
}
