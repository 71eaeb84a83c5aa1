package world

import (
	"math"
	"testing"
)

// TestGenerateIdempotent проверяет, что повторная генерация без Reset
// не меняет коллекции объектов
func TestGenerateIdempotent(t *testing.T) {
	g := NewGenerator(12345)
	g.Generate()

	first := len(g.Entities())
	if first == 0 {
		t.Fatal("Генерация не создала ни одного объекта")
	}

	g.Generate()
	if len(g.Entities()) != first {
		t.Errorf("Повторная генерация изменила мир: было %d объектов, стало %d",
			first, len(g.Entities()))
	}

	g.Reset()
	if g.Generated() || len(g.Entities()) != 0 {
		t.Error("Reset не очистил коллекции")
	}

	g.Generate()
	if len(g.Entities()) != first {
		t.Errorf("Генерация после Reset дала другой мир: было %d объектов, стало %d",
			first, len(g.Entities()))
	}
}

// TestGenerateDeterministic проверяет детерминированность по сиду
func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(777)
	a.Generate()
	b := NewGenerator(777)
	b.Generate()

	ea, eb := a.Entities(), b.Entities()
	if len(ea) != len(eb) {
		t.Fatalf("Разное число объектов при одном сиде: %d и %d", len(ea), len(eb))
	}
	for i := range ea {
		if ea[i].Position != eb[i].Position || ea[i].Type != eb[i].Type {
			t.Fatalf("Объект %d отличается при одном сиде: %+v и %+v", i, ea[i], eb[i])
		}
	}
}

// TestRoadClearance проверяет, что footprint-ы наземных объектов
// отодвинуты от дорожных осей
func TestRoadClearance(t *testing.T) {
	g := NewGenerator(42)
	g.Generate()

	for _, e := range g.Entities() {
		if e.Type == EntityTypeCloud {
			continue // облака не привязаны к сетке
		}
		dx := distanceToRoadAxis(e.Position.X)
		dz := distanceToRoadAxis(e.Position.Z)
		if dx < RoadClearance-1e-9 || dz < RoadClearance-1e-9 {
			t.Errorf("Объект %s id=%d стоит на дороге: pos=%+v (dx=%.2f, dz=%.2f)",
				e.Type, e.ID, e.Position, dx, dz)
		}
	}
}

// TestRingCourse проверяет генерацию трассы колец
func TestRingCourse(t *testing.T) {
	g := NewGenerator(1)
	g.Generate()
	base := len(g.Entities())

	g.GenerateRingCourse()
	rings := 0
	for _, e := range g.Entities() {
		if e.Type == EntityTypeRing {
			rings++
			if e.Solid() {
				t.Errorf("Кольцо id=%d считается твёрдым препятствием", e.ID)
			}
			if e.Position.Y <= 0 {
				t.Errorf("Кольцо id=%d под землёй: y=%.2f", e.ID, e.Position.Y)
			}
		}
	}
	if rings == 0 || len(g.Entities()) != base+rings {
		t.Errorf("Трасса колец не добавлена: rings=%d", rings)
	}
}

// TestHeightAtFlattensRoads проверяет, что высота на дорожной оси нулевая
func TestHeightAtFlattensRoads(t *testing.T) {
	g := NewGenerator(7)

	if h := g.HeightAt(0, 0); math.Abs(h) > 1e-9 {
		t.Errorf("Высота на перекрёстке должна быть 0, получено %.4f", h)
	}
	if h := g.HeightAt(RoadSpacing, 25); math.Abs(h) > 1e-9 {
		t.Errorf("Высота на дорожной оси должна быть 0, получено %.4f", h)
	}
}

// TestDisplaceFromRoad проверяет сдвиг координаты из полосы дороги
func TestDisplaceFromRoad(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, RoadClearance},                               // точно на оси — сдвиг вперёд
		{3, RoadClearance},                               // внутри полосы, справа от оси
		{-3, -RoadClearance},                             // внутри полосы, слева от оси
		{RoadSpacing + 2, RoadSpacing + RoadClearance},   // у следующей оси
		{RoadSpacing / 2, RoadSpacing / 2},               // середина квартала — без сдвига
		{RoadClearance + 0.5, RoadClearance + 0.5},       // уже за пределами полосы
		{RoadSpacing - 4, RoadSpacing - RoadClearance},   // слева от следующей оси
	}

	for _, c := range cases {
		got := displaceFromRoad(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("displaceFromRoad(%.2f) = %.2f, ожидалось %.2f", c.in, got, c.want)
		}
		if d := distanceToRoadAxis(got); d < RoadClearance-1e-9 {
			t.Errorf("displaceFromRoad(%.2f) оставил точку в полосе: расстояние %.2f", c.in, d)
		}
	}
}
