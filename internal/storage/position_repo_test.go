package storage

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPositionRepo_SaveLoad(t *testing.T) {
	// Тест сохранения и загрузки позиции
	repo := NewMemoryPositionRepo()
	ctx := context.Background()

	pos := PlayerPosition{
		Region:    world.RegionOverworld,
		Position:  vec.NewVec3(10, 64, -5),
		UpdatedAt: time.Now(),
	}

	require.NoError(t, repo.Save(ctx, "player-1", pos), "Сохранение должно пройти")

	loaded, exists, err := repo.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, exists, "Позиция должна существовать после сохранения")
	assert.Equal(t, pos.Region, loaded.Region)
	assert.Equal(t, pos.Position, loaded.Position)
}

func TestMemoryPositionRepo_LoadMissing(t *testing.T) {
	// Первый вход: позиции ещё нет
	repo := NewMemoryPositionRepo()

	_, exists, err := repo.Load(context.Background(), "unknown")
	require.NoError(t, err, "Отсутствие позиции не должно быть ошибкой")
	assert.False(t, exists, "Позиция не должна существовать")
}

func TestMemoryPositionRepo_Validation(t *testing.T) {
	repo := NewMemoryPositionRepo()
	ctx := context.Background()

	err := repo.Save(ctx, "", PlayerPosition{Region: world.RegionOverworld})
	assert.Error(t, err, "Пустой идентификатор должен отклоняться")

	err = repo.Save(ctx, "player-1", PlayerPosition{})
	assert.Error(t, err, "Позиция без региона должна отклоняться")

	_, _, err = repo.Load(ctx, "")
	assert.Error(t, err, "Загрузка по пустому идентификатору должна отклоняться")
}

func TestMemoryPositionRepo_Delete(t *testing.T) {
	repo := NewMemoryPositionRepo()
	ctx := context.Background()

	pos := PlayerPosition{Region: world.RegionNether, Position: vec.NewVec3(0, 32, 0)}
	require.NoError(t, repo.Save(ctx, "player-1", pos))

	require.NoError(t, repo.Delete(ctx, "player-1"), "Удаление должно пройти")

	_, exists, err := repo.Load(ctx, "player-1")
	require.NoError(t, err)
	assert.False(t, exists, "Позиция не должна существовать после удаления")

	assert.Error(t, repo.Delete(ctx, "player-1"), "Повторное удаление должно вернуть ошибку")
}

func TestMemoryPositionRepo_BatchSave(t *testing.T) {
	// Батч-сохранение позиций нескольких участников
	repo := NewMemoryPositionRepo()
	ctx := context.Background()

	batch := map[string]PlayerPosition{
		"player-1": {Region: world.RegionOverworld, Position: vec.NewVec3(1, 64, 1)},
		"player-2": {Region: world.RegionNether, Position: vec.NewVec3(2, 32, 2)},
		"player-3": {Region: world.RegionEnd, Position: vec.NewVec3(3, 48, 3)},
	}

	require.NoError(t, repo.BatchSave(ctx, batch))
	assert.Equal(t, 3, repo.Count(), "Все три позиции должны сохраниться")

	loaded, exists, err := repo.Load(ctx, "player-2")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, world.RegionNether, loaded.Region)

	// Пустой батч — не ошибка
	require.NoError(t, repo.BatchSave(ctx, nil))

	// Некорректная запись отклоняет весь батч
	bad := map[string]PlayerPosition{
		"player-4": {}, // без региона
	}
	assert.Error(t, repo.BatchSave(ctx, bad), "Батч с записью без региона должен отклоняться")
}

func TestMemoryPositionRepo_ContextCancellation(t *testing.T) {
	// Отменённый контекст прерывает операции
	repo := NewMemoryPositionRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := PlayerPosition{Region: world.RegionOverworld, Position: vec.NewVec3(0, 64, 0)}
	assert.ErrorIs(t, repo.Save(ctx, "player-1", pos), context.Canceled)

	_, _, err := repo.Load(ctx, "player-1")
	assert.ErrorIs(t, err, context.Canceled)
}
