package util

import (
	"github.com/aquilax/go-perlin"
)

// NoiseSource оборачивает генератор шума Перлина для детерминированной
// генерации высот рельефа по сиду
type NoiseSource struct {
	p *perlin.Perlin
}

// NewNoiseSource создаёт источник шума с указанным сидом
func NewNoiseSource(seed int64) *NoiseSource {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &NoiseSource{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Noise2D возвращает значение шума для указанных координат в диапазоне [0, 1]
func (ns *NoiseSource) Noise2D(x, y float64) float64 {
	// Noise2D библиотеки возвращает значение от -1 до 1
	return (ns.p.Noise2D(x, y) + 1.0) / 2.0
}
