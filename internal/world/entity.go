package world

import (
	"github.com/annel0/arcade-server/internal/vec"
)

// EntityType определяет тип статического объекта мира
type EntityType uint16

const (
	EntityTypeUnknown      EntityType = 0
	EntityTypeTower        EntityType = 1   // Высотное здание
	EntityTypeHouse        EntityType = 2   // Жилой дом
	EntityTypeCommercial   EntityType = 3   // Коммерческий квартал
	EntityTypeCivic        EntityType = 4   // Общественное здание
	EntityTypeParkingLot   EntityType = 5   // Парковка (плоская разметка)
	EntityTypeTree         EntityType = 100 // Дерево
	EntityTypeBench        EntityType = 101 // Скамейка
	EntityTypeBarrier      EntityType = 102 // Ограждение
	EntityTypeTrafficLight EntityType = 103 // Столб светофора
	EntityTypeCloud        EntityType = 200 // Облако (декор, высоко над землёй)
	EntityTypeRing         EntityType = 300 // Кольцо трассы (вариант glide)
)

// String возвращает имя типа для логов и minimap-рендера
func (t EntityType) String() string {
	switch t {
	case EntityTypeTower:
		return "tower"
	case EntityTypeHouse:
		return "house"
	case EntityTypeCommercial:
		return "commercial"
	case EntityTypeCivic:
		return "civic"
	case EntityTypeParkingLot:
		return "parking"
	case EntityTypeTree:
		return "tree"
	case EntityTypeBench:
		return "bench"
	case EntityTypeBarrier:
		return "barrier"
	case EntityTypeTrafficLight:
		return "traffic_light"
	case EntityTypeCloud:
		return "cloud"
	case EntityTypeRing:
		return "ring"
	default:
		return "unknown"
	}
}

// Entity представляет статический объект мира.
// Неизменяем после генерации: генератор — единственный владелец,
// детектор коллизий и рендер читают его без копирования.
type Entity struct {
	ID       uint64
	Type     EntityType
	Position vec.Vec3Float // Центр основания объекта
	Scale    vec.Vec3Float // Полные габариты по осям
	Color    uint32        // Подсказка цвета для рендера (0xRRGGBB)
}

// HalfExtents возвращает полуразмеры footprint-а в горизонтальной плоскости
func (e *Entity) HalfExtents() (hx, hz float64) {
	return e.Scale.X / 2, e.Scale.Z / 2
}

// Solid сообщает, участвует ли объект в проверке коллизий.
// Плоская разметка (парковки) и объекты ниже одного юнита — проезжаемые.
// Облака и кольца не являются препятствиями в горизонтальной плоскости.
func (e *Entity) Solid() bool {
	switch e.Type {
	case EntityTypeParkingLot, EntityTypeCloud, EntityTypeRing:
		return false
	}
	return e.Scale.Y >= 1.0
}
