package world

import (
	"math"
	"math/rand"

	"github.com/annel0/arcade-server/internal/logging"
	"github.com/annel0/arcade-server/internal/util"
	"github.com/annel0/arcade-server/internal/vec"
)

// Константы дорожной сетки и размеров мира
const (
	RoadSpacing   = 60.0  // Шаг сетки дорожных осей
	RoadClearance = 9.0   // Минимальное удаление footprint-а от оси дороги
	WorldExtent   = 600.0 // Полумир: объекты размещаются в [-WorldExtent, WorldExtent]
	CloudAltitude = 120.0 // Базовая высота облаков
)

// Количество объектов по категориям на одну сессию
const (
	towerCount        = 40
	houseCount        = 90
	commercialCount   = 35
	civicCount        = 12
	parkingCount      = 18
	treeCount         = 160
	benchCount        = 40
	barrierCount      = 60
	trafficLightCount = 48
	cloudCount        = 30
	ringCount         = 24
)

// Generator генерирует статический мир одной сессии.
// Коллекция объектов заполняется ровно один раз (guard в Generate);
// повторный вызов без Reset ничего не меняет.
type Generator struct {
	seed      int64
	rng       *rand.Rand
	terrain   *util.TerrainNoise
	generated bool
	entities  []Entity
	nextID    uint64
	log       *logging.Logger
}

// NewGenerator создаёт генератор мира с указанным сидом
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		terrain: util.NewTerrainNoise(seed),
		log:     logging.GetGameLogger(),
	}
}

// Seed возвращает сид генератора
func (g *Generator) Seed() int64 { return g.seed }

// Generated сообщает, заполнены ли коллекции
func (g *Generator) Generated() bool { return g.generated }

// Entities возвращает объекты мира. Слайс не копируется:
// после генерации он только читается.
func (g *Generator) Entities() []Entity {
	return g.entities
}

// Generate заполняет коллекции объектов. Идемпотентна в рамках сессии.
func (g *Generator) Generate() {
	if g.generated {
		return
	}
	g.generated = true

	g.placeBuildings(EntityTypeTower, towerCount, 10, 18, 30, 80, 0x8899aa)
	g.placeBuildings(EntityTypeHouse, houseCount, 8, 14, 6, 12, 0xbfae9e)
	g.placeBuildings(EntityTypeCommercial, commercialCount, 14, 24, 10, 22, 0x7f8fa0)
	g.placeBuildings(EntityTypeCivic, civicCount, 18, 28, 8, 16, 0xd8d2c4)
	g.placeBuildings(EntityTypeParkingLot, parkingCount, 16, 26, 0.05, 0.05, 0x3c3c3c)
	g.placeProps(EntityTypeTree, treeCount, 2.5, 4.5, 4, 9, 0x2f6b32)
	g.placeProps(EntityTypeBench, benchCount, 1.8, 2.2, 0.8, 0.8, 0x6b4a2f)
	g.placeProps(EntityTypeBarrier, barrierCount, 3.0, 5.0, 1.1, 1.1, 0xc0392b)
	g.placeTrafficLights()
	g.placeClouds()

	g.log.Info("Мир сгенерирован: %d объектов (seed=%d)", len(g.entities), g.seed)
}

// GenerateRingCourse добавляет трассу из колец для варианта glide.
// Кольца идут змейкой с плавным набором и сбросом высоты.
func (g *Generator) GenerateRingCourse() {
	start := len(g.entities)
	for i := 0; i < ringCount; i++ {
		t := float64(i) / float64(ringCount)
		angle := t * 4 * math.Pi
		radius := 150.0 + 250.0*t
		altitude := 30.0 + 50.0*math.Sin(t*3*math.Pi) + 40.0*t

		g.append(Entity{
			Type: EntityTypeRing,
			Position: vec.Vec3Float{
				X: math.Cos(angle) * radius,
				Y: altitude,
				Z: math.Sin(angle) * radius,
			},
			Scale: vec.Vec3Float{X: 12, Y: 12, Z: 2},
			Color: 0xf1c40f,
		})
	}
	g.log.Info("Трасса из %d колец добавлена", len(g.entities)-start)
}

// Reset очищает коллекции для новой сессии
func (g *Generator) Reset() {
	g.entities = nil
	g.generated = false
	g.nextID = 0
}

// HeightAt возвращает высоту ландшафта в точке.
// Используется вариантом drive вместо вертикального ray cast.
func (g *Generator) HeightAt(x, z float64) float64 {
	const (
		noiseScale = 0.004
		amplitude  = 6.0
	)
	h := g.terrain.At(x*noiseScale, z*noiseScale) * amplitude

	// Дороги прижимаются к ровному уровню, чтобы не было ступенек на перекрёстках
	road := math.Min(distanceToRoadAxis(x), distanceToRoadAxis(z))
	if road < RoadClearance {
		return h * (road / RoadClearance)
	}
	return h
}

// ZoneAt возвращает название городского района для HUD.
// Район определяется ячейкой дорожной сетки.
func (g *Generator) ZoneAt(x, z float64) string {
	cell := vec.Vec2{
		X: int(math.Floor(x / RoadSpacing)),
		Y: int(math.Floor(z / RoadSpacing)),
	}
	dist := cell.DistanceTo(vec.Vec2{})
	switch {
	case dist < 2:
		return "downtown"
	case dist < 5:
		return "midtown"
	case dist < 8:
		return "suburbs"
	default:
		return "outskirts"
	}
}

// placeBuildings размещает здания категории со случайным footprint-ом и высотой
func (g *Generator) placeBuildings(t EntityType, count int, minSide, maxSide, minH, maxH float64, color uint32) {
	for i := 0; i < count; i++ {
		pos := g.samplePosition()
		g.append(Entity{
			Type:     t,
			Position: pos,
			Scale: vec.Vec3Float{
				X: minSide + g.rng.Float64()*(maxSide-minSide),
				Y: minH + g.rng.Float64()*(maxH-minH),
				Z: minSide + g.rng.Float64()*(maxSide-minSide),
			},
			Color: color,
		})
	}
}

// placeProps размещает мелкие объекты (деревья, скамейки, ограждения)
func (g *Generator) placeProps(t EntityType, count int, minSide, maxSide, minH, maxH float64, color uint32) {
	for i := 0; i < count; i++ {
		pos := g.samplePosition()
		side := minSide + g.rng.Float64()*(maxSide-minSide)
		g.append(Entity{
			Type:     t,
			Position: pos,
			Scale: vec.Vec3Float{
				X: side,
				Y: minH + g.rng.Float64()*(maxH-minH),
				Z: side,
			},
			Color: color,
		})
	}
}

// placeTrafficLights ставит столбы светофоров у перекрёстков, со смещением от осей
func (g *Generator) placeTrafficLights() {
	placed := 0
	for placed < trafficLightCount {
		ix := float64(g.rng.Intn(int(2*WorldExtent/RoadSpacing))-int(WorldExtent/RoadSpacing)) * RoadSpacing
		iz := float64(g.rng.Intn(int(2*WorldExtent/RoadSpacing))-int(WorldExtent/RoadSpacing)) * RoadSpacing

		pos := vec.Vec3Float{
			X: displaceFromRoad(ix + (g.rng.Float64()*4 - 2)),
			Z: displaceFromRoad(iz + (g.rng.Float64()*4 - 2)),
		}
		pos.Y = g.HeightAt(pos.X, pos.Z)

		g.append(Entity{
			Type:     EntityTypeTrafficLight,
			Position: pos,
			Scale:    vec.Vec3Float{X: 0.8, Y: 6, Z: 0.8},
			Color:    0x2c3e50,
		})
		placed++
	}
}

// placeClouds размещает облака без привязки к сетке — коллизий у них нет
func (g *Generator) placeClouds() {
	for i := 0; i < cloudCount; i++ {
		g.append(Entity{
			Type: EntityTypeCloud,
			Position: vec.Vec3Float{
				X: -WorldExtent + g.rng.Float64()*2*WorldExtent,
				Y: CloudAltitude + g.rng.Float64()*60,
				Z: -WorldExtent + g.rng.Float64()*2*WorldExtent,
			},
			Scale: vec.Vec3Float{
				X: 20 + g.rng.Float64()*30,
				Y: 6 + g.rng.Float64()*6,
				Z: 14 + g.rng.Float64()*20,
			},
			Color: 0xffffff,
		})
	}
}

// samplePosition выбирает случайную точку и отодвигает её от дорожных осей
func (g *Generator) samplePosition() vec.Vec3Float {
	x := displaceFromRoad(-WorldExtent + g.rng.Float64()*2*WorldExtent)
	z := displaceFromRoad(-WorldExtent + g.rng.Float64()*2*WorldExtent)
	return vec.Vec3Float{X: x, Y: g.HeightAt(x, z), Z: z}
}

func (g *Generator) append(e Entity) {
	g.nextID++
	e.ID = g.nextID
	g.entities = append(g.entities, e)
}

// distanceToRoadAxis возвращает расстояние координаты до ближайшей дорожной оси
func distanceToRoadAxis(v float64) float64 {
	nearest := math.Round(v/RoadSpacing) * RoadSpacing
	return math.Abs(v - nearest)
}

// displaceFromRoad сдвигает координату перпендикулярно ближайшей оси,
// если она попадает в полосу дороги. Это эвристика размещения, а не
// гарантия: объекты по-прежнему могут пересекаться между собой.
func displaceFromRoad(v float64) float64 {
	nearest := math.Round(v/RoadSpacing) * RoadSpacing
	d := v - nearest
	if math.Abs(d) >= RoadClearance {
		return v
	}
	if d >= 0 {
		return nearest + RoadClearance
	}
	return nearest - RoadClearance
}
