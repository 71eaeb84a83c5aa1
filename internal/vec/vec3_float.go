package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// Ось Y — вертикаль, горизонтальная плоскость — X/Z (как в сцене игры).
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo возвращает расстояние до другого вектора
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}

// Horizontal возвращает проекцию на горизонтальную плоскость
func (v Vec3Float) Horizontal() Vec2Float {
	return Vec2Float{X: v.X, Y: v.Z}
}

// LerpTo экспоненциально приближает вектор к цели.
// t должен быть в диапазоне [0, 1]; при t=1 вектор совпадает с целью.
func (v Vec3Float) LerpTo(target Vec3Float, t float64) Vec3Float {
	if t >= 1 {
		return target
	}
	if t <= 0 {
		return v
	}
	return v.Add(target.Sub(v).Mul(t))
}
