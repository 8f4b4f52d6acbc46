package world

import (
	"testing"

	"github.com/annel0/blockscript/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	// Одинаковый сид даёт одинаковый рельеф
	area := vec.Vec2{X: 7, Y: 7}

	r1 := NewRegion("a", Bounds{MinY: -64, Height: 384})
	n1, err := NewGenerator(12345).FillTerrain(r1, vec.Vec2{}, area)
	require.NoError(t, err)
	assert.Greater(t, n1, 0, "Генерация должна установить блоки")

	r2 := NewRegion("b", Bounds{MinY: -64, Height: 384})
	n2, err := NewGenerator(12345).FillTerrain(r2, vec.Vec2{}, area)
	require.NoError(t, err)

	assert.Equal(t, n1, n2, "Количество блоков должно совпадать для одного сида")

	for x := 0; x <= area.X; x++ {
		for z := 0; z <= area.Y; z++ {
			for y := 0; y < 32; y++ {
				pos := vec.NewVec3(x, y, z)
				b1, err := r1.GetBlock(pos)
				require.NoError(t, err)
				b2, err := r2.GetBlock(pos)
				require.NoError(t, err)
				assert.Equal(t, b1.ID, b2.ID, "Блок %v должен совпадать", pos)
			}
		}
	}
}

func TestGenerator_SurfaceComposition(t *testing.T) {
	// Колонки заканчиваются травой, песком или водой
	r := NewRegion("terrain", Bounds{MinY: -64, Height: 384})
	g := NewGenerator(777)

	_, err := g.FillTerrain(r, vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 15, Y: 15})
	require.NoError(t, err)

	surface := map[BlockID]bool{}
	for x := 0; x <= 15; x++ {
		for z := 0; z <= 15; z++ {
			// Ищем верхний непустой блок колонки
			for y := g.BaseY + g.Amplitude + 1; y >= g.BaseY; y-- {
				b, err := r.GetBlock(vec.NewVec3(x, y, z))
				require.NoError(t, err)
				if !b.IsEmpty() {
					surface[b.ID] = true
					break
				}
			}
		}
	}

	for id := range surface {
		assert.Contains(t, []BlockID{GrassBlockID, SandBlockID, WaterBlockID}, id,
			"Поверхность должна состоять из травы, песка или воды")
	}
}

func TestGenerator_BoundsCheck(t *testing.T) {
	// Рельеф не помещается в низкий регион
	r := NewRegion("flat", Bounds{MinY: 0, Height: 8})
	g := NewGenerator(1)

	_, err := g.FillTerrain(r, vec.Vec2{}, vec.Vec2{X: 3, Y: 3})
	assert.Error(t, err, "Рельеф выше границ региона должен отклоняться")
}
