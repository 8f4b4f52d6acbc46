package vec

import "math"

// Vec3 представляет трехмерный вектор с целочисленными координатами блока
type Vec3 struct {
	X int
	Y int
	Z int
}

// NewVec3 создаёт Vec3 из трёх компонентов.
// Вторая точка входа — Vec3FromFloat — принимает готовую структуру;
// две именованные функции вместо одного конструктора с проверкой типов.
func NewVec3(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Vec3FromFloat создаёт Vec3 из Vec3Float, отбрасывая дробную часть
func Vec3FromFloat(p Vec3Float) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}
}

// ToVec2 преобразует Vec3 в Vec2, игнорируя координату Y
func (v Vec3) ToVec2() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Z,
	}
}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	dz := float64(v.Z - other.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает другой вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Offset возвращает вектор, смещённый на указанные величины
func (v Vec3) Offset(dx, dy, dz int) Vec3 {
	return Vec3{X: v.X + dx, Y: v.Y + dy, Z: v.Z + dz}
}

// MinComponents возвращает покомпонентный минимум двух векторов
func MinComponents(a, b Vec3) Vec3 {
	return Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

// MaxComponents возвращает покомпонентный максимум двух векторов
func MaxComponents(a, b Vec3) Vec3 {
	return Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}
