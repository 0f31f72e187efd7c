package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径 + 运行 ID 等基础字段，便于不同子命令复用。
func BaseFields(action, configPath, runID string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
		"run_id":     runID,
	}
}

// CacheFields 提供 key 与记录文件路径字段，供缓存操作日志复用。
func CacheFields(key, path string) logrus.Fields {
	return logrus.Fields{
		"key":  key,
		"path": path,
	}
}
