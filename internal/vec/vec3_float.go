package vec

import (
	"fmt"
	"math"
)

// Vec3Float представляет трехмерный вектор с плавающими координатами
// (точные позиции сущностей между границами блоков)
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// NewVec3Float создаёт Vec3Float из трёх компонентов
func NewVec3Float(x, y, z float64) Vec3Float {
	return Vec3Float{X: x, Y: y, Z: z}
}

// Vec3FloatFromVec3 создаёт Vec3Float из целочисленного вектора
func Vec3FloatFromVec3(p Vec3) Vec3Float {
	return Vec3Float{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// Validate проверяет, что все компоненты — конечные числа.
// NaN и бесконечности отклоняются с ошибкой.
func (v Vec3Float) Validate() error {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) {
			return fmt.Errorf("компонент вектора не является числом (NaN): %v", v)
		}
		if math.IsInf(c, 0) {
			return fmt.Errorf("компонент вектора бесконечен: %v", v)
		}
	}
	return nil
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Scale умножает вектор на скаляр
func (v Vec3Float) Scale(s float64) Vec3Float {
	return Vec3Float{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
