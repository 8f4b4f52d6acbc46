package world

import (
	"fmt"

	"github.com/annel0/blockscript/internal/util"
	"github.com/annel0/blockscript/internal/vec"
)

// Константы высот для генерации (доли от диапазона высот рельефа)
const (
	waterLevel = 0.30 // Ниже - вода
	sandLevel  = 0.35 // Ниже - песчаный берег
)

// Generator заполняет регион процедурным рельефом на основе шума Перлина
type Generator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб шума (сглаженность ландшафта)
	BaseY      int     // Нижняя граница рельефа
	Amplitude  int     // Максимальная высота рельефа над BaseY
	noise      *util.NoiseSource
}

// NewGenerator создаёт генератор рельефа с указанным сидом
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		NoiseScale: 0.05,
		BaseY:      0,
		Amplitude:  24,
		noise:      util.NewNoiseSource(seed),
	}
}

// FillTerrain заполняет прямоугольную область региона рельефом.
// Колонки строятся детерминированно по сиду: камень в основании,
// земля, сверху трава либо вода/песок в низинах.
func (g *Generator) FillTerrain(r *Region, from, to vec.Vec2) (int, error) {
	if g.Amplitude < 1 {
		return 0, fmt.Errorf("недопустимая амплитуда рельефа: %d", g.Amplitude)
	}

	lo := vec.Vec2{X: min(from.X, to.X), Y: min(from.Y, to.Y)}
	hi := vec.Vec2{X: max(from.X, to.X), Y: max(from.Y, to.Y)}

	bounds := r.Bounds()
	if !bounds.Contains(g.BaseY) || !bounds.Contains(g.BaseY+g.Amplitude) {
		return 0, fmt.Errorf("рельеф [%d, %d] не помещается в границы региона %s",
			g.BaseY, g.BaseY+g.Amplitude, r.Name())
	}

	count := 0
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Y; z <= hi.Y; z++ {
			height := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
			surfaceY := g.BaseY + int(height*float64(g.Amplitude))

			n, err := g.fillColumn(r, x, z, surfaceY, height)
			if err != nil {
				return count, err
			}
			count += n
		}
	}
	return count, nil
}

// fillColumn строит одну колонку блоков до уровня surfaceY
func (g *Generator) fillColumn(r *Region, x, z, surfaceY int, height float64) (int, error) {
	count := 0
	set := func(y int, id BlockID) error {
		if err := r.SetBlock(vec.NewVec3(x, y, z), id); err != nil {
			return err
		}
		count++
		return nil
	}

	for y := g.BaseY; y < surfaceY; y++ {
		id := StoneBlockID
		if surfaceY-y <= 3 {
			id = DirtBlockID
		}
		if err := set(y, id); err != nil {
			return count, err
		}
	}

	switch {
	case height < waterLevel:
		// Низина: заливаем водой до уровня воды
		waterY := g.BaseY + int(waterLevel*float64(g.Amplitude))
		for y := surfaceY; y <= waterY; y++ {
			if err := set(y, WaterBlockID); err != nil {
				return count, err
			}
		}
	case height < sandLevel:
		if err := set(surfaceY, SandBlockID); err != nil {
			return count, err
		}
	default:
		if err := set(surfaceY, GrassBlockID); err != nil {
			return count, err
		}
	}

	return count, nil
}
