// Package sim реализует покадровую симуляцию машины/самолёта
package sim

import (
	"fmt"
	"math"

	"github.com/annel0/arcade-server/internal/physics"
	"github.com/annel0/arcade-server/internal/vec"
	"github.com/annel0/arcade-server/internal/world"
)

// Variant определяет вариант игры
type Variant int

const (
	VariantDrive Variant = iota // Городское вождение
	VariantGlide                // Полёт по кольцам
)

// ParseVariant возвращает вариант по имени из конфигурации
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "drive":
		return VariantDrive, nil
	case "glide":
		return VariantGlide, nil
	default:
		return 0, fmt.Errorf("неизвестный вариант игры: %q", name)
	}
}

// String возвращает имя варианта
func (v Variant) String() string {
	if v == VariantGlide {
		return "glide"
	}
	return "drive"
}

// Phase определяет фазу симуляции: до старта/после game over и бег
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
)

// String возвращает имя фазы для HUD
func (p Phase) String() string {
	if p == PhaseRunning {
		return "running"
	}
	return "idle"
}

// PlayerState — поза локального игрока. Единственный писатель — Step,
// вызываемый из одного кадрового цикла.
type PlayerState struct {
	Position vec.Vec3Float
	Heading  float64 // Курс в горизонтальной плоскости, радианы
	Speed    float64 // Продольная скорость, юнитов/с
}

// StepResult описывает исход одного кадра
type StepResult struct {
	Collision      *world.Entity // Первый пересёкшийся объект (nil — кадр чистый)
	Bounced        bool          // Применён отскок
	Terminal       bool          // Коллизия завершила сессию
	RingsCollected int           // Колец собрано за кадр (glide)
}

// World — то, что симуляции нужно от сгенерированного мира.
// Реализуется world.Generator.
type World interface {
	Entities() []world.Entity
	HeightAt(x, z float64) float64
	ZoneAt(x, z float64) string
}

// Константы косметического крена/тангажа
const (
	rollFactor  = 0.012
	pitchFactor = 0.06
	tiltLerp    = 6.0
)

// Simulator интегрирует ввод игрока в позу каждый кадр.
// Не потокобезопасен: доступ сериализует владелец (Session).
type Simulator struct {
	variant Variant
	tuning  Tuning
	world   World
	input   *InputState

	phase      Phase
	player     PlayerState
	camera     CameraState
	cameraMode CameraMode

	// Косметический наклон корпуса; обратной связи в физику нет
	roll, pitch float64
	prevSpeed   float64

	distance  float64 // Пройденный путь (очки варианта drive)
	rings     int     // Собранные кольца (очки варианта glide)
	collected map[uint64]bool
}

// NewSimulator создаёт симулятор в фазе Idle
func NewSimulator(variant Variant, w World, input *InputState) *Simulator {
	return &Simulator{
		variant:   variant,
		tuning:    tuningFor(variant),
		world:     w,
		input:     input,
		camera:    CameraState{FOV: fovBase},
		collected: make(map[uint64]bool),
	}
}

func tuningFor(v Variant) Tuning {
	if v == VariantGlide {
		return GlideTuning()
	}
	return DriveTuning()
}

// Phase возвращает текущую фазу
func (s *Simulator) Phase() Phase { return s.phase }

// Variant возвращает вариант игры
func (s *Simulator) Variant() Variant { return s.variant }

// Player возвращает позу игрока
func (s *Simulator) Player() PlayerState { return s.player }

// Camera возвращает сглаженную позу камеры
func (s *Simulator) Camera() CameraState { return s.camera }

// CameraMode возвращает текущий режим камеры
func (s *Simulator) CameraMode() CameraMode { return s.cameraMode }

// SetCameraMode переключает режим камеры
func (s *Simulator) SetCameraMode(m CameraMode) { s.cameraMode = m }

// Tilt возвращает косметический крен и тангаж корпуса
func (s *Simulator) Tilt() (roll, pitch float64) { return s.roll, s.pitch }

// Score возвращает очки сессии: drive — пройденный путь, glide — кольца
func (s *Simulator) Score() int64 {
	if s.variant == VariantGlide {
		return int64(s.rings) * 100
	}
	return int64(s.distance)
}

// Zone возвращает название района для HUD
func (s *Simulator) Zone() string {
	if s.world == nil {
		return ""
	}
	return s.world.ZoneAt(s.player.Position.X, s.player.Position.Z)
}

// Start переводит симуляцию в Running и сбрасывает позу, скорость и очки
// независимо от состояния предыдущей сессии
func (s *Simulator) Start() {
	s.player = PlayerState{}
	if s.variant == VariantGlide {
		s.player.Position.Y = 25 // стартовая высота полёта
	}
	s.roll, s.pitch, s.prevSpeed = 0, 0, 0
	s.distance = 0
	s.rings = 0
	s.collected = make(map[uint64]bool)

	// Камера прыгает в целевую позу, чтобы не тянуться через весь мир
	s.camera.Position, s.camera.LookAt = targetPose(s.player.Position, s.player.Heading, s.cameraMode)
	s.camera.FOV = fovBase

	s.phase = PhaseRunning
}

// Step выполняет один кадр симуляции. dt — время с прошлого кадра в секундах,
// ограничивается сверху для защиты от больших шагов интеграции после паузы.
// Вне фазы Running и без мира — no-op.
func (s *Simulator) Step(dt float64) StepResult {
	var res StepResult
	if s.phase != PhaseRunning || s.world == nil || s.input == nil || dt <= 0 {
		return res
	}
	if dt > s.tuning.MaxFrameDelta {
		dt = s.tuning.MaxFrameDelta
	}

	s.prevSpeed = s.player.Speed
	s.integrateSpeed(dt)
	s.steer(dt)
	s.integratePosition(dt)
	s.updateVertical(dt)
	s.updateTilt(dt)
	s.camera.update(s.player.Position, s.player.Heading, s.player.Speed,
		s.tuning.MaxSpeed, dt, s.cameraMode)

	// За кадр разрешается не более одной коллизии
	if hit := physics.FindCollision(s.player.Position, s.tuning.PlayerRadius, s.world.Entities()); hit != nil {
		res.Collision = hit
		if s.terminalFor(hit.Type) {
			s.phase = PhaseIdle
			res.Terminal = true
			return res
		}
		s.player.Position, s.player.Speed = physics.Bounce(s.player.Position, s.player.Speed, hit)
		res.Bounced = true
	}

	if s.variant == VariantGlide {
		res.RingsCollected = s.collectRings()
	}

	return res
}

// terminalFor решает, завершает ли сессию столкновение с типом объекта.
// В полёте фатально любое препятствие; в вождении — капитальные здания,
// остальное даёт отскок.
func (s *Simulator) terminalFor(t world.EntityType) bool {
	if s.variant == VariantGlide {
		return true
	}
	switch t {
	case world.EntityTypeTower, world.EntityTypeCivic:
		return true
	}
	return false
}

// integrateSpeed применяет продольную динамику: газ, тормоз/задний ход
// либо экспоненциальное затухание с прилипанием к нулю
func (s *Simulator) integrateSpeed(dt float64) {
	tn := &s.tuning
	speed := s.player.Speed

	switch {
	case s.input.Pressed(ActionAccelerate):
		speed += tn.Accel * dt
	case s.input.Pressed(ActionBrake):
		if speed > 0 {
			speed -= tn.BrakeDecel * dt
			if speed < 0 {
				speed = 0
			}
		} else {
			speed -= tn.ReverseAccel * dt
		}
	default:
		// Нормализация по частоте кадров: одинаковое затухание при любом fps
		speed *= math.Pow(tn.Friction, dt*referenceFPS)
		if math.Abs(speed) < tn.SnapSpeed {
			speed = 0
		}
	}

	// Асимметричный диапазон: назад — половина максимума
	if speed > tn.MaxSpeed {
		speed = tn.MaxSpeed
	}
	if speed < -tn.MaxSpeed/2 {
		speed = -tn.MaxSpeed / 2
	}

	s.player.Speed = speed
}

// steer применяет руление: фиксированная угловая дельта, знак по направлению
// движения (задним ходом руль работает зеркально), ниже порога — без эффекта
func (s *Simulator) steer(dt float64) {
	if math.Abs(s.player.Speed) < s.tuning.MinSteerSpeed {
		return
	}

	dir := 0.0
	if s.input.Pressed(ActionSteerLeft) {
		dir += 1
	}
	if s.input.Pressed(ActionSteerRight) {
		dir -= 1
	}
	if dir == 0 {
		return
	}

	sign := 1.0
	if s.player.Speed < 0 {
		sign = -1
	}
	s.player.Heading += dir * sign * s.tuning.SteerRate * dt
}

// integratePosition проецирует продольное смещение на курс
func (s *Simulator) integratePosition(dt float64) {
	d := s.player.Speed * dt
	s.player.Position.X += math.Sin(s.player.Heading) * d
	s.player.Position.Z += math.Cos(s.player.Heading) * d
	s.distance += math.Abs(d)
}

// updateVertical: drive — высота тянется к ландшафту, glide — набор/сброс
// высоты с нижним пределом над землёй
func (s *Simulator) updateVertical(dt float64) {
	pos := &s.player.Position

	if s.variant == VariantDrive {
		target := s.world.HeightAt(pos.X, pos.Z)
		pos.Y += (target - pos.Y) * math.Min(1, s.tuning.TerrainLerp*dt)
		return
	}

	if s.input.Pressed(ActionClimb) {
		pos.Y += s.tuning.ClimbRate * dt
	}
	if s.input.Pressed(ActionDescend) {
		pos.Y -= s.tuning.ClimbRate * dt
	}
	floor := s.world.HeightAt(pos.X, pos.Z) + s.tuning.MinAltitude
	if pos.Y < floor {
		pos.Y = floor
	}
}

// updateTilt сглаживает косметический крен (от руления) и тангаж
// (от изменения скорости)
func (s *Simulator) updateTilt(dt float64) {
	steer := 0.0
	if s.input.Pressed(ActionSteerLeft) {
		steer += 1
	}
	if s.input.Pressed(ActionSteerRight) {
		steer -= 1
	}

	rollTarget := -steer * s.player.Speed * rollFactor
	pitchTarget := (s.player.Speed - s.prevSpeed) * pitchFactor

	t := math.Min(1, tiltLerp*dt)
	s.roll += (rollTarget - s.roll) * t
	s.pitch += (pitchTarget - s.pitch) * t
}

// collectRings засчитывает кольца, через которые игрок пролетел в этом кадре
func (s *Simulator) collectRings() int {
	n := 0
	entities := s.world.Entities()
	for i := range entities {
		e := &entities[i]
		if e.Type != world.EntityTypeRing || s.collected[e.ID] {
			continue
		}
		if s.player.Position.DistanceTo(e.Position) < e.Scale.X/2 {
			s.collected[e.ID] = true
			s.rings++
			n++
		}
	}
	return n
}
