package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPositionRepo реализует PositionRepo поверх Redis для быстрого доступа.
// Позиции хранятся как JSON-строки с TTL, чтобы неактивные записи
// вытеснялись автоматически.
type RedisPositionRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "script:pos:",
		TTL:       30 * time.Minute,
	}
}

// NewRedisPositionRepo создаёт новый Redis-репозиторий позиций
func NewRedisPositionRepo(config *RedisConfig) (*RedisPositionRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Проверяем подключение
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &RedisPositionRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// Save сохраняет позицию участника в Redis
func (r *RedisPositionRepo) Save(ctx context.Context, playerID string, pos PlayerPosition) error {
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}
	if pos.Region == "" {
		return fmt.Errorf("позиция участника %s без региона", playerID)
	}

	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("ошибка сериализации позиции для %s: %w", playerID, err)
	}

	key := r.keyPrefix + playerID
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения позиции для %s: %w", playerID, err)
	}

	return nil
}

// Load загружает позицию участника из Redis
func (r *RedisPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой идентификатор участника")
	}

	key := r.keyPrefix + playerID
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return PlayerPosition{}, false, nil // Позиция не найдена - первый вход
	} else if err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка загрузки позиции для %s: %w", playerID, err)
	}

	var pos PlayerPosition
	if err := json.Unmarshal([]byte(data), &pos); err != nil {
		return PlayerPosition{}, false, fmt.Errorf("ошибка десериализации позиции для %s: %w", playerID, err)
	}

	return pos, true, nil
}

// Delete удаляет сохранённую позицию участника из Redis
func (r *RedisPositionRepo) Delete(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}

	key := r.keyPrefix + playerID
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ошибка удаления позиции для %s: %w", playerID, err)
	}
	if deleted == 0 {
		return fmt.Errorf("позиция участника %s не найдена", playerID)
	}

	return nil
}

// BatchSave сохраняет позиции нескольких участников одним пайплайном
func (r *RedisPositionRepo) BatchSave(ctx context.Context, positions map[string]PlayerPosition) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	pipe := r.client.Pipeline()
	for playerID, pos := range positions {
		if playerID == "" {
			return fmt.Errorf("пустой идентификатор участника в batch")
		}
		if pos.Region == "" {
			return fmt.Errorf("позиция участника %s без региона", playerID)
		}

		data, err := json.Marshal(pos)
		if err != nil {
			return fmt.Errorf("ошибка сериализации позиции для %s: %w", playerID, err)
		}
		pipe.Set(ctx, r.keyPrefix+playerID, data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ошибка выполнения batch: %w", err)
	}

	return nil
}

// Count возвращает количество сохранённых позиций (через SCAN)
func (r *RedisPositionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта позиций: %w", err)
	}
	return count, nil
}

// Close закрывает соединение с Redis
func (r *RedisPositionRepo) Close() error {
	return r.client.Close()
}
