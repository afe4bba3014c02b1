package logger

import (
	"path/filepath"
	"testing"

	"aws-audit-collector/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	// Init with nil config keeps the default logger
	Init(nil)
	assert.NotNil(t, Log)

	cfg := &config.LogConfig{
		Level:  "debug",
		Output: "stdout",
		Format: "console",
	}
	Init(cfg)
	assert.NotNil(t, Log)

	dir := t.TempDir()
	cfgFile := &config.LogConfig{
		Level:  "info",
		Output: "file",
		Format: "json",
		File: &config.FileLogConfig{
			Path: filepath.Join(dir, "audit.log"),
		},
	}
	Init(cfgFile)
	assert.NotNil(t, Log)

	cfgBoth := &config.LogConfig{
		Level:  "warn",
		Output: "both",
		Format: "console",
		File: &config.FileLogConfig{
			Path: filepath.Join(dir, "audit_both.log"),
		},
	}
	Init(cfgBoth)
	assert.NotNil(t, Log)

	// 非法 level 回退到 info，不应 panic
	Init(&config.LogConfig{Level: "bogus", Output: "stdout"})
	assert.NotNil(t, Log)

	Sync()
}
