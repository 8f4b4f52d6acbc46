package world

import (
	"testing"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirror_RefreshOnDemand(t *testing.T) {
	// Фасад отражает состояние на момент Refresh, а не живое состояние
	r := testRegion()
	pos := vec.NewVec3(3, 10, 3)
	require.NoError(t, r.SetBlock(pos, StoneBlockID))

	m, err := NewMirrorAt(r, pos)
	require.NoError(t, err)
	assert.Equal(t, StoneBlockID, m.TypeID, "Фасад должен отразить текущий тип")
	assert.False(t, m.Empty)

	// Меняем регион напрямую — фасад устаревает
	require.NoError(t, r.SetBlock(pos, WaterBlockID))
	assert.Equal(t, StoneBlockID, m.TypeID, "До Refresh фасад хранит старый тип")

	require.NoError(t, m.Refresh())
	assert.Equal(t, WaterBlockID, m.TypeID, "После Refresh тип должен обновиться")
}

func TestMirror_FromComponents(t *testing.T) {
	// Две точки входа создают одинаковый фасад
	r := testRegion()
	require.NoError(t, r.SetBlock(vec.NewVec3(1, 2, 3), GrassBlockID))

	m1, err := NewMirror(r, 1, 2, 3)
	require.NoError(t, err)
	m2, err := NewMirrorAt(r, vec.NewVec3(1, 2, 3))
	require.NoError(t, err)

	assert.Equal(t, m1.Position(), m2.Position())
	assert.Equal(t, m1.TypeID, m2.TypeID)
	assert.Same(t, r, m1.Region())
}

func TestMirror_Apply(t *testing.T) {
	// Apply записывает тип фасада обратно в регион
	r := testRegion()
	pos := vec.NewVec3(0, 0, 0)

	m, err := NewMirrorAt(r, pos)
	require.NoError(t, err)
	assert.True(t, m.Empty, "Пустая позиция должна дать пустой фасад")

	m.TypeID = DirtBlockID
	require.NoError(t, m.Apply())
	assert.False(t, m.Empty, "После записи непустого типа фасад не пуст")

	b, err := r.GetBlock(pos)
	require.NoError(t, err)
	assert.Equal(t, DirtBlockID, b.ID, "Регион должен получить тип из фасада")
}

func TestMirror_OutOfBounds(t *testing.T) {
	// Создание фасада вне диапазона высот — ошибка
	r := NewRegion("flat", Bounds{MinY: 0, Height: 16})

	_, err := NewMirror(r, 0, 100, 0)
	assert.Error(t, err, "Позиция вне диапазона должна отклоняться")

	_, err = NewMirrorAt(nil, vec.NewVec3(0, 0, 0))
	assert.Error(t, err, "Nil-регион должен отклоняться")
}
