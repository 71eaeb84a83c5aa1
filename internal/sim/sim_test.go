package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/annel0/arcade-server/internal/vec"
	"github.com/annel0/arcade-server/internal/world"
)

// flatWorld — плоский мир с заданным набором объектов для тестов
type flatWorld struct {
	entities []world.Entity
}

func (w *flatWorld) Entities() []world.Entity      { return w.entities }
func (w *flatWorld) HeightAt(x, z float64) float64 { return 0 }
func (w *flatWorld) ZoneAt(x, z float64) string    { return "test" }

func newRunningSim(t *testing.T, variant Variant, entities ...world.Entity) (*Simulator, *InputState) {
	t.Helper()
	input := &InputState{}
	s := NewSimulator(variant, &flatWorld{entities: entities}, input)
	s.Start()
	return s, input
}

const frameDT = 1.0 / 60.0

// TestFrictionDecaysToExactZero: без ввода скорость строго убывает по модулю
// и прилипает ровно к нулю ниже порога
func TestFrictionDecaysToExactZero(t *testing.T) {
	s, _ := newRunningSim(t, VariantDrive)
	s.player.Speed = 20

	prev := s.player.Speed
	reachedZero := false
	for i := 0; i < 5000; i++ {
		s.Step(frameDT)
		cur := s.player.Speed
		if cur == 0 {
			reachedZero = true
			break
		}
		if math.Abs(cur) >= math.Abs(prev) {
			t.Fatalf("Затухание не строго убывает: кадр %d, %.6f -> %.6f", i, prev, cur)
		}
		prev = cur
	}

	if !reachedZero {
		t.Fatalf("Скорость не прилипла к нулю, осталось %.6f", s.player.Speed)
	}

	// После остановки скорость остаётся ровно нулевой
	s.Step(frameDT)
	if s.player.Speed != 0 {
		t.Errorf("Скорость сдвинулась с нуля без ввода: %.6f", s.player.Speed)
	}
}

// TestSpeedClampedForAnyInputs: скорость всегда в [-max/2, max]
// для произвольных последовательностей ввода
func TestSpeedClampedForAnyInputs(t *testing.T) {
	s, input := newRunningSim(t, VariantDrive)
	rng := rand.New(rand.NewSource(99))
	max := s.tuning.MaxSpeed

	for i := 0; i < 3000; i++ {
		input.Set(ActionAccelerate, rng.Intn(3) == 0)
		input.Set(ActionBrake, rng.Intn(3) == 0)
		input.Set(ActionSteerLeft, rng.Intn(2) == 0)
		input.Set(ActionSteerRight, rng.Intn(2) == 0)
		s.Step(frameDT)

		if s.player.Speed > max || s.player.Speed < -max/2 {
			t.Fatalf("Кадр %d: скорость %.3f вне диапазона [%.1f, %.1f]",
				i, s.player.Speed, -max/2, max)
		}
	}
}

// TestSteeringInertBelowThreshold: ниже минимальной скорости руль не действует
func TestSteeringInertBelowThreshold(t *testing.T) {
	s, input := newRunningSim(t, VariantDrive)
	s.player.Speed = s.tuning.MinSteerSpeed / 2
	input.Set(ActionSteerLeft, true)

	heading := s.player.Heading
	s.Step(frameDT)
	if s.player.Heading != heading {
		t.Errorf("Курс изменился ниже порога руления: %.4f -> %.4f", heading, s.player.Heading)
	}
}

// TestSteeringReversesBackward: задним ходом знак руления зеркален
func TestSteeringReversesBackward(t *testing.T) {
	forward, input := newRunningSim(t, VariantDrive)
	forward.player.Speed = 10
	input.Set(ActionSteerLeft, true)
	forward.Step(frameDT)
	deltaForward := forward.player.Heading

	backward, input2 := newRunningSim(t, VariantDrive)
	backward.player.Speed = -10
	input2.Set(ActionSteerLeft, true)
	backward.Step(frameDT)
	deltaBackward := backward.player.Heading

	if deltaForward == 0 || deltaBackward == 0 {
		t.Fatal("Руление не подействовало")
	}
	if math.Signbit(deltaForward) == math.Signbit(deltaBackward) {
		t.Errorf("Знак руления не зеркален задним ходом: вперёд %.4f, назад %.4f",
			deltaForward, deltaBackward)
	}
}

// TestStartResetsSession: старт сбрасывает позу, скорость и очки
// независимо от состояния прошлой сессии
func TestStartResetsSession(t *testing.T) {
	s, _ := newRunningSim(t, VariantDrive)
	s.player = PlayerState{
		Position: vec.Vec3Float{X: 50, Y: 3, Z: -20},
		Heading:  1.7,
		Speed:    33,
	}
	s.distance = 4200
	s.phase = PhaseIdle

	s.Start()

	if s.phase != PhaseRunning {
		t.Error("Старт не перевёл симуляцию в Running")
	}
	if s.player.Position != (vec.Vec3Float{}) || s.player.Heading != 0 || s.player.Speed != 0 {
		t.Errorf("Старт не сбросил позу: %+v", s.player)
	}
	if s.Score() != 0 {
		t.Errorf("Старт не сбросил очки: %d", s.Score())
	}
}

// TestAccelerationScenario: N кадров газа — position.Z монотонно растёт,
// скорость приближается к максимуму, но не превышает его
func TestAccelerationScenario(t *testing.T) {
	s, input := newRunningSim(t, VariantDrive)
	input.Set(ActionAccelerate, true)

	prevZ := s.player.Position.Z
	for i := 0; i < 600; i++ {
		s.Step(frameDT)
		z := s.player.Position.Z
		if z <= prevZ {
			t.Fatalf("Кадр %d: position.Z не растёт (%.4f -> %.4f)", i, prevZ, z)
		}
		if s.player.Speed > s.tuning.MaxSpeed {
			t.Fatalf("Кадр %d: скорость %.3f превысила максимум %.1f",
				i, s.player.Speed, s.tuning.MaxSpeed)
		}
		prevZ = z
	}

	if s.player.Speed < s.tuning.MaxSpeed*0.95 {
		t.Errorf("За 10 секунд газа скорость не приблизилась к максимуму: %.2f из %.1f",
			s.player.Speed, s.tuning.MaxSpeed)
	}
}

// TestCollisionBounceOnce: здание в (100,0) с полуразмером 10 — игрок в центре
// получает ровно одну коллизию за кадр и отскок
func TestCollisionBounceOnce(t *testing.T) {
	house := world.Entity{
		ID:       1,
		Type:     world.EntityTypeHouse,
		Position: vec.Vec3Float{X: 100, Z: 0},
		Scale:    vec.Vec3Float{X: 20, Y: 10, Z: 20},
	}
	s, _ := newRunningSim(t, VariantDrive, house)
	s.player.Position = vec.Vec3Float{X: 100, Z: 0}
	s.player.Speed = 12

	res := s.Step(frameDT)
	if res.Collision == nil {
		t.Fatal("Коллизия не обнаружена")
	}
	if !res.Bounced || res.Terminal {
		t.Fatalf("Для жилого дома ожидался отскок, получено %+v", res)
	}
	if s.player.Speed >= 0 {
		t.Errorf("Отскок не инвертировал скорость: %.2f", s.player.Speed)
	}
	if s.phase != PhaseRunning {
		t.Error("Отскок не должен завершать сессию")
	}
}

// TestCollisionTerminal: капитальные здания в drive и любое препятствие
// в glide завершают сессию
func TestCollisionTerminal(t *testing.T) {
	tower := world.Entity{
		ID:       1,
		Type:     world.EntityTypeTower,
		Position: vec.Vec3Float{X: 0, Z: 0},
		Scale:    vec.Vec3Float{X: 20, Y: 60, Z: 20},
	}

	t.Run("Drive Tower", func(t *testing.T) {
		s, _ := newRunningSim(t, VariantDrive, tower)
		s.player.Position = vec.Vec3Float{}

		res := s.Step(frameDT)
		if !res.Terminal {
			t.Fatalf("Столкновение с башней не завершило сессию: %+v", res)
		}
		if s.Phase() != PhaseIdle {
			t.Error("Симуляция не вернулась в Idle после game over")
		}
	})

	t.Run("Glide Any Obstacle", func(t *testing.T) {
		tree := tower
		tree.Type = world.EntityTypeTree
		tree.Scale = vec.Vec3Float{X: 4, Y: 8, Z: 4}

		s, _ := newRunningSim(t, VariantGlide, tree)
		s.player.Position = vec.Vec3Float{Y: 5}

		res := s.Step(frameDT)
		if !res.Terminal {
			t.Fatalf("В полёте любое препятствие фатально, получено %+v", res)
		}
	})
}

// TestStepNoOpWhenIdle: вне Running кадр ничего не меняет
func TestStepNoOpWhenIdle(t *testing.T) {
	input := &InputState{}
	s := NewSimulator(VariantDrive, &flatWorld{}, input)
	input.Set(ActionAccelerate, true)

	res := s.Step(frameDT)
	if res.Collision != nil || s.player.Speed != 0 {
		t.Errorf("Step в Idle изменил состояние: %+v", s.player)
	}
}

// TestStepNoOpWithoutWorld: без мира кадр деградирует в no-op, без паники
func TestStepNoOpWithoutWorld(t *testing.T) {
	s := NewSimulator(VariantDrive, nil, &InputState{})
	s.phase = PhaseRunning

	res := s.Step(frameDT)
	if res.Collision != nil || res.Bounced || res.Terminal {
		t.Errorf("Step без мира вернул ненулевой результат: %+v", res)
	}
}

// TestRingCollectedOnce: кольцо засчитывается ровно один раз
func TestRingCollectedOnce(t *testing.T) {
	ring := world.Entity{
		ID:       7,
		Type:     world.EntityTypeRing,
		Position: vec.Vec3Float{X: 0, Y: 25, Z: 0},
		Scale:    vec.Vec3Float{X: 12, Y: 12, Z: 2},
	}
	s, _ := newRunningSim(t, VariantGlide, ring)
	s.player.Position = vec.Vec3Float{X: 0, Y: 25, Z: 0}

	res := s.Step(frameDT)
	if res.RingsCollected != 1 {
		t.Fatalf("За пролёт через кольцо засчитано %d колец", res.RingsCollected)
	}
	if s.Score() != 100 {
		t.Errorf("Очки за кольцо: %d, ожидалось 100", s.Score())
	}

	res = s.Step(frameDT)
	if res.RingsCollected != 0 {
		t.Errorf("Кольцо засчитано повторно: %d", res.RingsCollected)
	}
}

// TestCameraCockpitSnaps: режим кабины прыгает в целевую позу мгновенно,
// chase тянется экспоненциально
func TestCameraCockpitSnaps(t *testing.T) {
	s, _ := newRunningSim(t, VariantDrive)
	s.SetCameraMode(CameraCockpit)
	s.player.Position = vec.Vec3Float{X: 200, Z: 200}

	s.Step(frameDT)
	want, _ := targetPose(s.player.Position, s.player.Heading, CameraCockpit)
	if s.camera.Position.DistanceTo(want) > 1e-9 {
		t.Errorf("Камера кабины не прыгнула в цель: %+v vs %+v", s.camera.Position, want)
	}

	chase, _ := newRunningSim(t, VariantDrive)
	chase.player.Position = vec.Vec3Float{X: 200, Z: 200}
	chase.Step(frameDT)
	chaseTarget, _ := targetPose(chase.player.Position, chase.player.Heading, CameraChase)
	if chase.camera.Position.DistanceTo(chaseTarget) < 1.0 {
		t.Error("Chase-камера прыгнула вместо сглаживания")
	}
}

// TestFOVGrowsWithSpeed: поле зрения тянется к цели, зависящей от скорости
func TestFOVGrowsWithSpeed(t *testing.T) {
	s, input := newRunningSim(t, VariantDrive)
	input.Set(ActionAccelerate, true)

	for i := 0; i < 600; i++ {
		s.Step(frameDT)
	}
	if s.camera.FOV <= fovBase {
		t.Errorf("FOV на скорости не вырос: %.2f", s.camera.FOV)
	}
	if s.camera.FOV > fovBase+fovSpeedGain {
		t.Errorf("FOV превысил цель: %.2f", s.camera.FOV)
	}
}

// TestLargeFrameDeltaClamped: большой dt после подвисания ограничивается
func TestLargeFrameDeltaClamped(t *testing.T) {
	s, input := newRunningSim(t, VariantDrive)
	input.Set(ActionAccelerate, true)

	s.Step(5.0) // «подвисание» на 5 секунд
	maxGain := s.tuning.Accel * s.tuning.MaxFrameDelta
	if s.player.Speed > maxGain+1e-9 {
		t.Errorf("dt не ограничен: скорость %.3f после одного кадра", s.player.Speed)
	}
}
