package storage

import (
	"testing"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegion(name string) *world.Region {
	bounds, ok := world.DefaultBounds(name)
	if !ok {
		bounds = world.Bounds{MinY: 0, Height: 256}
	}
	return world.NewRegion(name, bounds)
}

func newTestStorage(t *testing.T) *RegionStorage {
	t.Helper()
	rs, err := NewRegionStorage(t.TempDir())
	require.NoError(t, err, "Хранилище должно открываться")
	t.Cleanup(func() { rs.Close() })
	return rs
}

func TestRegionStorage_SaveLoad(t *testing.T) {
	// Сохранение изменений региона и загрузка дельты
	rs := newTestStorage(t)

	region := newTestRegion(world.RegionOverworld)
	require.NoError(t, region.SetBlock(vec.NewVec3(1, 64, 1), world.StoneBlockID))
	require.NoError(t, region.SetBlockWithMetadata(vec.NewVec3(2, 64, 2), world.GrassBlockID,
		map[string]interface{}{"growth": "full"}))

	require.NoError(t, rs.SaveRegion(region))
	assert.Empty(t, region.Changes(), "Список изменений должен очиститься после сохранения")

	delta, err := rs.LoadRegion(world.RegionOverworld)
	require.NoError(t, err)
	require.Len(t, delta.BlockDeltas, 2, "Дельта должна содержать оба изменения")
	assert.Equal(t, world.StoneBlockID, delta.BlockDeltas["1:64:1"].ID)
	assert.Equal(t, world.GrassBlockID, delta.BlockDeltas["2:64:2"].ID)
	assert.Equal(t, "full", delta.BlockDeltas["2:64:2"].Payload["growth"])
}

func TestRegionStorage_LoadMissing(t *testing.T) {
	// Несохранённый регион читается как пустая дельта
	rs := newTestStorage(t)

	delta, err := rs.LoadRegion("never-saved")
	require.NoError(t, err, "Отсутствие дельты не должно быть ошибкой")
	assert.Empty(t, delta.BlockDeltas)
	assert.Equal(t, "never-saved", delta.Name)
}

func TestRegionStorage_SaveNoChanges(t *testing.T) {
	// Регион без изменений не пишется
	rs := newTestStorage(t)

	region := newTestRegion(world.RegionOverworld)
	require.NoError(t, rs.SaveRegion(region))

	delta, err := rs.LoadRegion(world.RegionOverworld)
	require.NoError(t, err)
	assert.Empty(t, delta.BlockDeltas)
}

func TestRegionStorage_MergeDeltas(t *testing.T) {
	// Повторное сохранение сливает новые изменения с существующей дельтой
	rs := newTestStorage(t)

	region := newTestRegion(world.RegionOverworld)
	require.NoError(t, region.SetBlock(vec.NewVec3(0, 64, 0), world.StoneBlockID))
	require.NoError(t, rs.SaveRegion(region))

	require.NoError(t, region.SetBlock(vec.NewVec3(5, 64, 5), world.SandBlockID))
	require.NoError(t, rs.SaveRegion(region))

	delta, err := rs.LoadRegion(world.RegionOverworld)
	require.NoError(t, err)
	require.Len(t, delta.BlockDeltas, 2, "Обе записи должны быть в дельте")
	assert.Equal(t, world.StoneBlockID, delta.BlockDeltas["0:64:0"].ID)
	assert.Equal(t, world.SandBlockID, delta.BlockDeltas["5:64:5"].ID)
}

func TestRegionStorage_ApplyDelta(t *testing.T) {
	// Полный цикл: сохранение, загрузка и применение к свежему региону
	rs := newTestStorage(t)

	original := newTestRegion(world.RegionOverworld)
	require.NoError(t, original.SetBlock(vec.NewVec3(-3, 70, 8), world.DirtBlockID))
	require.NoError(t, original.SetBlockWithMetadata(vec.NewVec3(0, 64, 0), world.WaterBlockID,
		map[string]interface{}{"level": "source"}))
	require.NoError(t, rs.SaveRegion(original))

	restored := newTestRegion(world.RegionOverworld)
	require.NoError(t, rs.LoadAndApply(restored))

	b, err := restored.GetBlock(vec.NewVec3(-3, 70, 8))
	require.NoError(t, err)
	assert.Equal(t, world.DirtBlockID, b.ID, "Блок должен восстановиться")

	b, err = restored.GetBlock(vec.NewVec3(0, 64, 0))
	require.NoError(t, err)
	assert.Equal(t, world.WaterBlockID, b.ID)
	assert.Equal(t, "source", b.Payload["level"], "Метаданные должны восстановиться")

	assert.Empty(t, restored.Changes(), "Применение дельты не должно считаться новыми правками")
}

func TestRegionStorage_ClosedStorage(t *testing.T) {
	rs, err := NewRegionStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, rs.Close())

	region := newTestRegion(world.RegionOverworld)
	require.NoError(t, region.SetBlock(vec.NewVec3(0, 64, 0), world.StoneBlockID))

	assert.Error(t, rs.SaveRegion(region), "Закрытое хранилище должно отклонять запись")
	_, err = rs.LoadRegion(world.RegionOverworld)
	assert.Error(t, err, "Закрытое хранилище должно отклонять чтение")

	assert.NoError(t, rs.Close(), "Повторное закрытие не должно быть ошибкой")
}

func TestPackPos_RoundTrip(t *testing.T) {
	pos := vec.NewVec3(-12, 300, 7)
	unpacked, err := unpackPos(packPos(pos))
	require.NoError(t, err)
	assert.Equal(t, pos, unpacked)

	_, err = unpackPos("garbage")
	assert.Error(t, err, "Некорректный ключ должен отклоняться")
}
