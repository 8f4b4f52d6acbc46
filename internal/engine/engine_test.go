package engine

import (
	"testing"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/annel0/blockscript/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(world.NewRegionManager(), 5)
	require.NoError(t, err, "Движок должен создаваться")
	return e
}

func TestEngine_Creation(t *testing.T) {
	// Тест создания движка
	e := newTestEngine(t)
	assert.Equal(t, uint64(0), e.CurrentTick(), "Начальный тик должен быть 0")
	assert.Empty(t, e.Players(), "Участников не должно быть при создании")

	_, err := NewEngine(nil, 5)
	assert.Error(t, err, "Nil-менеджер регионов должен отклоняться")

	_, err = NewEngine(world.NewRegionManager(), 0)
	assert.Error(t, err, "Нулевая глубина истории должна отклоняться")
}

func TestEngine_PlayersOrder(t *testing.T) {
	// Участники перечисляются в порядке подключения
	e := newTestEngine(t)

	p1 := e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 0, 0))
	p2 := e.AddPlayer("beta", world.RegionOverworld, vec.NewVec3(1, 0, 0))
	p3 := e.AddPlayer("gamma", world.RegionNether, vec.NewVec3(2, 0, 0))

	players := e.Players()
	require.Len(t, players, 3)
	assert.Equal(t, []string{p1.ID, p2.ID, p3.ID},
		[]string{players[0].ID, players[1].ID, players[2].ID},
		"Порядок должен соответствовать подключению")

	assert.True(t, e.RemovePlayer(p2.ID), "Удаление подключённого участника должно вернуть true")
	assert.False(t, e.RemovePlayer(p2.ID), "Повторное удаление должно вернуть false")

	players = e.Players()
	require.Len(t, players, 2)
	assert.Equal(t, p3.ID, players[1].ID, "Порядок оставшихся должен сохраниться")
}

func TestEngine_TickHandlers(t *testing.T) {
	// Обработчики вызываются с учётом интервала
	e := newTestEngine(t)
	e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 0, 0))

	var everyTick, everyThird int
	require.NoError(t, e.OnTick(1, func(tick uint64, players []*Player) {
		everyTick++
		assert.Len(t, players, 1, "Обработчик должен получить снимок участников")
	}))
	require.NoError(t, e.OnTick(3, func(tick uint64, players []*Player) {
		everyThird++
	}))

	for i := 0; i < 6; i++ {
		e.Step()
	}

	assert.Equal(t, 6, everyTick, "Обработчик с интервалом 1 должен сработать на каждом тике")
	assert.Equal(t, 2, everyThird, "Обработчик с интервалом 3 должен сработать дважды")
	assert.Equal(t, uint64(6), e.CurrentTick())

	// Некорректные регистрации
	assert.Error(t, e.OnTick(0, func(uint64, []*Player) {}), "Интервал 0 должен отклоняться")
	assert.Error(t, e.OnTick(1, nil), "Nil-обработчик должен отклоняться")
}

func TestEngine_PositionTracking(t *testing.T) {
	// Каждый тик позиция участника попадает в историю
	e := newTestEngine(t)
	p := e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 64, 0))

	for i := 1; i <= 3; i++ {
		require.NoError(t, e.MovePlayer(p.ID, vec.NewVec3(i, 64, 0)))
		e.Step()
	}

	hist := e.PositionHistory().Read(p.ID)
	require.Len(t, hist, 5, "Длина истории должна равняться ёмкости")
	assert.Equal(t, vec.NewVec3(0, 0, 0), hist[0], "Начало должно быть заполнено значением по умолчанию")
	assert.Equal(t, vec.NewVec3(1, 64, 0), hist[2])
	assert.Equal(t, vec.NewVec3(2, 64, 0), hist[3])
	assert.Equal(t, vec.NewVec3(3, 64, 0), hist[4], "Последняя позиция должна быть в конце")

	assert.Error(t, e.MovePlayer("ghost", vec.NewVec3(0, 0, 0)),
		"Перемещение неизвестного участника должно отклоняться")
}

func TestEngine_PlaceBlock(t *testing.T) {
	// Установка блока проходит через before/after обработчики
	e := newTestEngine(t)
	p := e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 0, 0))
	pos := vec.NewVec3(10, 64, 10)

	var beforeCalled, afterCalled bool
	e.SubscribeBeforePlace(func(ev *world.BeforePlaceEvent) {
		beforeCalled = true
		assert.Equal(t, p.ID, ev.Actor)
		assert.Equal(t, world.StoneBlockID, ev.Block)
	})
	e.SubscribeAfterPlace(func(ev *world.AfterPlaceEvent) {
		afterCalled = true
		assert.Equal(t, world.AirBlockID, ev.Previous, "Прежний блок должен быть воздухом")
	})

	placed, err := e.PlaceBlock(p, world.RegionOverworld, pos, world.StoneBlockID)
	require.NoError(t, err)
	assert.True(t, placed, "Установка должна пройти")
	assert.True(t, beforeCalled, "Before-обработчик должен быть вызван")
	assert.True(t, afterCalled, "After-обработчик должен быть вызван")

	region, err := e.Regions().Get(world.RegionOverworld)
	require.NoError(t, err)
	b, err := region.GetBlock(pos)
	require.NoError(t, err)
	assert.Equal(t, world.StoneBlockID, b.ID, "Блок должен появиться в регионе")
}

func TestEngine_PlaceBlockCancel(t *testing.T) {
	// Before-обработчик может отменить установку
	e := newTestEngine(t)
	p := e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 0, 0))
	pos := vec.NewVec3(5, 64, 5)

	e.SubscribeBeforePlace(func(ev *world.BeforePlaceEvent) {
		if ev.Block == world.WaterBlockID {
			ev.Cancel = true
		}
	})

	var afterCalled bool
	e.SubscribeAfterPlace(func(ev *world.AfterPlaceEvent) {
		afterCalled = true
	})

	placed, err := e.PlaceBlock(p, world.RegionOverworld, pos, world.WaterBlockID)
	require.NoError(t, err)
	assert.False(t, placed, "Отменённая установка должна вернуть false")
	assert.False(t, afterCalled, "After-обработчик не должен вызываться при отмене")

	region, err := e.Regions().Get(world.RegionOverworld)
	require.NoError(t, err)
	b, err := region.GetBlock(pos)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty(), "Регион не должен измениться при отмене")
}

func TestEngine_PlaceBlockValidation(t *testing.T) {
	e := newTestEngine(t)
	p := e.AddPlayer("alpha", world.RegionOverworld, vec.NewVec3(0, 0, 0))

	_, err := e.PlaceBlock(nil, world.RegionOverworld, vec.NewVec3(0, 64, 0), world.StoneBlockID)
	assert.Error(t, err, "Nil-участник должен отклоняться")

	_, err = e.PlaceBlock(p, "aether", vec.NewVec3(0, 64, 0), world.StoneBlockID)
	assert.Error(t, err, "Неизвестный регион должен отклоняться")

	_, err = e.PlaceBlock(p, world.RegionOverworld, vec.NewVec3(0, 10000, 0), world.StoneBlockID)
	assert.Error(t, err, "Позиция вне диапазона высот должна отклоняться")
}
