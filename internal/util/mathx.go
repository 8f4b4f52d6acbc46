package util

import (
	"fmt"
	"math"
)

// Clamp ограничивает значение диапазоном [min, max].
// NaN на любом входе и перевёрнутый диапазон (min > max) — ошибки валидации.
func Clamp(v, min, max float64) (float64, error) {
	if math.IsNaN(v) || math.IsNaN(min) || math.IsNaN(max) {
		return 0, fmt.Errorf("clamp: аргумент не является числом (v=%v, min=%v, max=%v)", v, min, max)
	}
	if min > max {
		return 0, fmt.Errorf("clamp: перевёрнутый диапазон [%v, %v]", min, max)
	}
	if v < min {
		return min, nil
	}
	if v > max {
		return max, nil
	}
	return v, nil
}
