package storage

import (
	"context"
	"time"

	"github.com/annel0/blockscript/internal/vec"
)

// PlayerPosition представляет сохранённую позицию участника
type PlayerPosition struct {
	Region    string    `json:"region"`     // Имя региона
	Position  vec.Vec3  `json:"position"`   // Позиция в блоках
	UpdatedAt time.Time `json:"updated_at"` // Время последнего обновления
}

// PositionRepo определяет интерфейс для сохранения и загрузки позиций
// участников между сессиями. Ключ — постоянный идентификатор участника
// (UUID), а не номер сессии.
type PositionRepo interface {
	// Save сохраняет позицию участника в хранилище.
	Save(ctx context.Context, playerID string, pos PlayerPosition) error

	// Load загружает позицию участника.
	// Второе значение false означает первый вход (позиции ещё нет).
	Load(ctx context.Context, playerID string) (PlayerPosition, bool, error)

	// Delete удаляет сохранённую позицию участника.
	Delete(ctx context.Context, playerID string) error

	// BatchSave сохраняет позиции нескольких участников одновременно
	// (для автосохранения по тику).
	BatchSave(ctx context.Context, positions map[string]PlayerPosition) error
}
