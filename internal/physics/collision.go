// Package physics реализует проверку коллизий игрока со статическим миром
package physics

import (
	"math"

	"github.com/annel0/arcade-server/internal/vec"
	"github.com/annel0/arcade-server/internal/world"
)

// PushStep — фиксированный шаг выталкивания игрока из объекта при отскоке
const PushStep = 0.8

// BounceDamping — коэффициент гашения скорости при неупругом отскоке
const BounceDamping = 0.5

// Overlaps проверяет пересечение игрока (точка + радиус) с footprint-ом
// объекта в горизонтальной плоскости
func Overlaps(pos vec.Vec3Float, radius float64, e *world.Entity) bool {
	hx, hz := e.HalfExtents()
	return math.Abs(pos.X-e.Position.X) < hx+radius &&
		math.Abs(pos.Z-e.Position.Z) < hz+radius
}

// FindCollision возвращает первый пересекающийся твёрдый объект.
// Порядок обхода — порядок генерации, без сортировки по расстоянию;
// за кадр разрешается ровно одна коллизия.
func FindCollision(pos vec.Vec3Float, radius float64, entities []world.Entity) *world.Entity {
	for i := range entities {
		e := &entities[i]
		if !e.Solid() {
			continue
		}
		// Пролёт над объектом коллизией не считается
		if pos.Y > e.Position.Y+e.Scale.Y {
			continue
		}
		if Overlaps(pos, radius, e) {
			return e
		}
	}
	return nil
}

// Bounce применяет неупругий отскок: скорость инвертируется и гасится,
// позиция выталкивается наружу вдоль знака разделяющей оси на PushStep.
// Разделяющая ось — та, по которой игрок дальше от центра объекта
// относительно его полуразмера.
func Bounce(pos vec.Vec3Float, speed float64, e *world.Entity) (vec.Vec3Float, float64) {
	hx, hz := e.HalfExtents()
	dx := pos.X - e.Position.X
	dz := pos.Z - e.Position.Z

	// Нормализуем смещения на полуразмеры, чтобы выбрать ось выхода
	nx, nz := 1.0, 1.0
	if hx > 0 {
		nx = math.Abs(dx) / hx
	}
	if hz > 0 {
		nz = math.Abs(dz) / hz
	}

	if nx >= nz {
		pos.X += math.Copysign(PushStep, dx)
	} else {
		pos.Z += math.Copysign(PushStep, dz)
	}

	return pos, -speed * BounceDamping
}
