// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultPaths 是未指定配置路径时按顺序尝试的默认位置
var defaultPaths = []string{
	"/app/configs/audit.yaml",
	"./configs/audit.yaml",
	"./audit.yaml",
}

// expandEnv replaces ${var} or $var in the string according to the values
// of the current environment variables. It supports default values using
// the ${var:-default} syntax.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		// Handle ${VAR:-default}
		if k, def, cut := strings.Cut(key, ":-"); cut {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				return v
			}
			return def
		}
		return os.Getenv(key)
	})
}

// Load 从指定路径加载配置，path 为空时依次尝试默认路径
// 加载时展开环境变量引用并执行 Validate
func Load(path string) (*Config, error) {
	data, actualPath, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", actualPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, string, error) {
	// 如果指定了路径，直接使用
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return data, path, nil
	}

	// 否则尝试默认路径
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read config file %s: %w", p, err)
			}
			return data, p, nil
		}
	}

	return nil, "", fmt.Errorf("config file not found in default paths: %v", defaultPaths)
}
