package util

import (
	"github.com/aquilax/go-perlin"
)

// TerrainNoise оборачивает шум Перлина для высоты ландшафта
type TerrainNoise struct {
	noise *perlin.Perlin
}

// NewTerrainNoise создаёт генератор шума с указанным сидом
func NewTerrainNoise(seed int64) *TerrainNoise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &TerrainNoise{noise: perlin.NewPerlin(alpha, beta, n, seed)}
}

// At возвращает значение шума для указанных координат в диапазоне [0, 1]
func (t *TerrainNoise) At(x, y float64) float64 {
	// Noise2D возвращает значение от -1 до 1
	return (t.noise.Noise2D(x, y) + 1.0) / 2.0
}
