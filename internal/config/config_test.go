package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	// Загрузка конфигурации из YAML файла
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
engine:
  tick_rate: 10
  history_capacity: 50
  seed: 42
eventbus:
  url: nats://localhost:4222
  buffer: 256
storage:
  data_path: /var/lib/blockscript
  redis_url: localhost:6379
server:
  metrics_port: 9100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 10, cfg.Engine.GetTickRate())
	assert.Equal(t, 50, cfg.Engine.GetHistoryCapacity())
	assert.Equal(t, 42, cfg.Engine.Seed)
	assert.Equal(t, "nats://localhost:4222", cfg.EventBus.URL)
	assert.Equal(t, 256, cfg.EventBus.Buffer)
	assert.Equal(t, "/var/lib/blockscript", cfg.Storage.GetDataPath())
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisURL)
	assert.Equal(t, 9100, cfg.Server.GetMetricsPort())
}

func TestLoad_NoConfig(t *testing.T) {
	// Без пути и без ENV конфиг не обязателен
	t.Setenv("BLOCKSCRIPT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg, "Отсутствие конфига — не ошибка")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	assert.Error(t, err, "Несуществующий файл должен вернуть ошибку")
}

func TestLoad_EnvPath(t *testing.T) {
	// Путь к конфигу через BLOCKSCRIPT_CONFIG
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  tick_rate: 5\n"), 0o644))
	t.Setenv("BLOCKSCRIPT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 5, cfg.Engine.GetTickRate())
}

func TestEnvFallbacks(t *testing.T) {
	// Приоритет: config -> env -> default
	var e EngineConfig
	var s ServerConfig

	assert.Equal(t, 20, e.GetTickRate(), "Дефолтная частота тиков")
	assert.Equal(t, 100, e.GetHistoryCapacity(), "Дефолтная глубина истории")
	assert.Equal(t, 2112, s.GetMetricsPort(), "Дефолтный порт метрик")

	t.Setenv("SCRIPT_TICK_RATE", "30")
	assert.Equal(t, 30, e.GetTickRate(), "ENV должен переопределять дефолт")

	e.TickRate = 15
	assert.Equal(t, 15, e.GetTickRate(), "Конфиг должен переопределять ENV")

	t.Setenv("SCRIPT_TICK_RATE", "not-a-number")
	e.TickRate = 0
	assert.Equal(t, 20, e.GetTickRate(), "Некорректный ENV игнорируется")
}
