package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryPositionRepo реализует PositionRepo в памяти.
// Используется как fallback, когда Redis/MariaDB недоступны,
// или для CI/локальной разработки без БД.
// ВНИМАНИЕ: Данные теряются при перезапуске процесса!
type MemoryPositionRepo struct {
	mu   sync.RWMutex
	data map[string]PlayerPosition // playerID -> позиция
}

// NewMemoryPositionRepo создает новый репозиторий позиций в памяти
func NewMemoryPositionRepo() *MemoryPositionRepo {
	return &MemoryPositionRepo{
		data: make(map[string]PlayerPosition),
	}
}

// Save сохраняет позицию участника в памяти
func (r *MemoryPositionRepo) Save(ctx context.Context, playerID string, pos PlayerPosition) error {
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}
	if pos.Region == "" {
		return fmt.Errorf("позиция участника %s без региона", playerID)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[playerID] = pos
	return nil
}

// Load загружает позицию участника из памяти
func (r *MemoryPositionRepo) Load(ctx context.Context, playerID string) (PlayerPosition, bool, error) {
	if playerID == "" {
		return PlayerPosition{}, false, fmt.Errorf("пустой идентификатор участника")
	}

	select {
	case <-ctx.Done():
		return PlayerPosition{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, exists := r.data[playerID]
	return pos, exists, nil
}

// Delete удаляет сохранённую позицию участника из памяти
func (r *MemoryPositionRepo) Delete(ctx context.Context, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("пустой идентификатор участника")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[playerID]; !exists {
		return fmt.Errorf("позиция участника %s не найдена", playerID)
	}

	delete(r.data, playerID)
	return nil
}

// BatchSave сохраняет позиции нескольких участников в памяти
func (r *MemoryPositionRepo) BatchSave(ctx context.Context, positions map[string]PlayerPosition) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Валидация всех записей перед сохранением
	for playerID, pos := range positions {
		if playerID == "" {
			return fmt.Errorf("пустой идентификатор участника в batch")
		}
		if pos.Region == "" {
			return fmt.Errorf("позиция участника %s без региона", playerID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for playerID, pos := range positions {
		r.data[playerID] = pos
	}

	return nil
}

// Count возвращает количество сохранённых позиций (для отладки)
func (r *MemoryPositionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Clear очищает все сохранённые позиции (для тестов)
func (r *MemoryPositionRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string]PlayerPosition)
}
