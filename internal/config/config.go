package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации песочницы.

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
}

type EngineConfig struct {
	TickRate        int `yaml:"tick_rate"`        // Тиков в секунду
	HistoryCapacity int `yaml:"history_capacity"` // Глубина истории позиций
	Seed            int `yaml:"seed"`             // Сид генератора ландшафта
}

type EventBusConfig struct {
	URL       string `yaml:"url"`    // NATS URL; пусто — in-memory шина
	Buffer    int    `yaml:"buffer"` // Размер буфера in-memory шины
	Retention int    `yaml:"retention_hours"`
}

type StorageConfig struct {
	DataPath string `yaml:"data_path"` // Каталог BadgerDB для дельт регионов
	RedisURL string `yaml:"redis_url"` // Адрес Redis для позиций (пусто — память)
	MariaDSN string `yaml:"maria_dsn"` // DSN MariaDB для позиций (пусто — не используется)
	MongoURI string `yaml:"mongo_uri"` // URI MongoDB для архива событий (пусто — не используется)
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

// GetTickRate возвращает частоту тиков с приоритетом: config -> env -> default
func (e *EngineConfig) GetTickRate() int {
	return getIntWithEnvFallback(e.TickRate, "SCRIPT_TICK_RATE", 20)
}

// GetHistoryCapacity возвращает глубину истории позиций
func (e *EngineConfig) GetHistoryCapacity() int {
	return getIntWithEnvFallback(e.HistoryCapacity, "SCRIPT_HISTORY_CAPACITY", 100)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(s.MetricsPort, "SCRIPT_METRICS_PORT", 2112)
}

// GetDataPath возвращает каталог данных с приоритетом: config -> env -> default
func (s *StorageConfig) GetDataPath() string {
	if s.DataPath != "" {
		return s.DataPath
	}
	if env := os.Getenv("SCRIPT_DATA_PATH"); env != "" {
		return env
	}
	return "./data"
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configVal > 0 {
		return configVal
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultVal
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV BLOCKSCRIPT_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("BLOCKSCRIPT_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
