package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/annel0/arcade-server/internal/eventbus"
	"github.com/annel0/arcade-server/internal/score"
	"github.com/annel0/arcade-server/internal/sim"
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

const frameDT = 1.0 / 60.0

func newTestSession(entities ...world.Entity) (*Session, score.Repo, eventbus.EventBus) {
	repo := score.NewMemoryRepo()
	bus := eventbus.NewMemoryBus(32)
	s := NewSession(&flatWorld{entities: entities}, repo, bus, Options{
		Variant:  sim.VariantDrive,
		TickRate: 60,
	})
	return s, repo, bus
}

// TestInputNamedActions: известные действия принимаются, неизвестные — нет
func TestInputNamedActions(t *testing.T) {
	s, _, _ := newTestSession()

	if err := s.Input("accelerate", true); err != nil {
		t.Errorf("Действие accelerate отклонено: %v", err)
	}
	if err := s.Input("warp", true); err == nil {
		t.Error("Неизвестное действие принято")
	}
}

// TestSessionDrivesAndScores: после старта газ двигает игрока и растит счёт
func TestSessionDrivesAndScores(t *testing.T) {
	s, _, _ := newTestSession()
	ctx := context.Background()

	s.Start(ctx)
	if s.HUD().Phase != "running" {
		t.Fatal("Старт не перевёл сессию в running")
	}

	if err := s.Input("accelerate", true); err != nil {
		t.Fatalf("Ошибка ввода: %v", err)
	}
	for i := 0; i < 300; i++ {
		s.step(ctx, frameDT)
	}

	hud := s.HUD()
	if hud.Score <= 0 {
		t.Errorf("Счёт не растёт при движении: %d", hud.Score)
	}
	if hud.Speed <= 0 {
		t.Errorf("Скорость не растёт при газе: %.2f", hud.Speed)
	}
	if hud.Position.Z <= 0 {
		t.Errorf("Игрок не сдвинулся: %+v", hud.Position)
	}
}

// TestGameOverSubmitsRecord: фатальная коллизия завершает сессию,
// результат уходит в хранилище, событие — в шину
func TestGameOverSubmitsRecord(t *testing.T) {
	tower := world.Entity{
		ID:       1,
		Type:     world.EntityTypeTower,
		Position: vec.Vec3Float{X: 0, Z: 40},
		Scale:    vec.Vec3Float{X: 20, Y: 60, Z: 20},
	}
	s, repo, bus := newTestSession(tower)
	ctx := context.Background()

	events := make(chan *eventbus.Envelope, 8)
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: []string{eventbus.EventGameOver}},
		func(_ context.Context, ev *eventbus.Envelope) { events <- ev })
	if err != nil {
		t.Fatalf("Ошибка подписки: %v", err)
	}
	defer sub.Unsubscribe()

	s.Start(ctx)
	s.Input("accelerate", true)

	terminal := false
	for i := 0; i < 1200 && !terminal; i++ {
		s.step(ctx, frameDT)
		terminal = s.HUD().Phase == "idle"
	}
	if !terminal {
		t.Fatal("Сессия не завершилась столкновением с башней")
	}

	best, found, err := repo.Best(ctx, "drive")
	if err != nil {
		t.Fatalf("Ошибка загрузки рекорда: %v", err)
	}
	if !found || best <= 0 {
		t.Errorf("Результат не сохранён: best=%d found=%v", best, found)
	}

	hud := s.HUD()
	if !hud.HasRecord || hud.HighScore != best {
		t.Errorf("HUD не показывает новый рекорд: %+v", hud)
	}

	select {
	case ev := <-events:
		var payload map[string]any
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			t.Fatalf("Повреждённое событие game over: %v", err)
		}
		if payload["variant"] != "drive" || payload["obstacle"] != "tower" {
			t.Errorf("Неверное событие game over: %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Error("Событие game over не опубликовано")
	}
}

// TestRestartAfterGameOver: повторный старт обнуляет счёт, рекорд сохраняется
func TestRestartAfterGameOver(t *testing.T) {
	s, repo, _ := newTestSession()
	ctx := context.Background()

	if _, err := repo.Submit(ctx, "drive", 900); err != nil {
		t.Fatalf("Ошибка подготовки рекорда: %v", err)
	}
	s.loadBest(ctx)

	s.Start(ctx)
	s.Input("accelerate", true)
	for i := 0; i < 120; i++ {
		s.step(ctx, frameDT)
	}
	if s.HUD().Score <= 0 {
		t.Fatal("Счёт не набрался перед перезапуском")
	}

	s.Start(ctx)
	hud := s.HUD()
	if hud.Score != 0 {
		t.Errorf("Перезапуск не обнулил счёт: %d", hud.Score)
	}
	if hud.HighScore != 900 {
		t.Errorf("Перезапуск потерял рекорд: %d", hud.HighScore)
	}
	if hud.Speed != 0 {
		t.Errorf("Перезапуск не сбросил скорость: %.2f", hud.Speed)
	}
}

// TestRunLoopStopsOnCancel: кадровый цикл завершается по отмене контекста
func TestRunLoopStopsOnCancel(t *testing.T) {
	s, _, _ := newTestSession()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Кадровый цикл не остановился по отмене контекста")
	}
}
