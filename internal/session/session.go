// Package session связывает симуляцию, реле, рекорды и шину событий
// в единый кадровый цикл.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/arcade-server/internal/eventbus"
	"github.com/annel0/arcade-server/internal/logging"
	"github.com/annel0/arcade-server/internal/relay"
	"github.com/annel0/arcade-server/internal/score"
	"github.com/annel0/arcade-server/internal/sim"
)

// Options определяет параметры сессии
type Options struct {
	Variant         sim.Variant
	TickRate        int          // Кадров в секунду; 0 — 60
	Relay           *relay.Relay // nil — одиночная игра
	StaleTTL        time.Duration
	SendRateDivisor int // Слать позу каждый N-й кадр; 0 — каждый
}

// Session управляет жизненным циклом одной игровой сессии: кадровый цикл,
// ввод игрока, обмен позами с пиром, фиксация рекорда при game over.
// Потокобезопасна: кадровый цикл и REST-обработчики сериализуются мьютексом.
type Session struct {
	id      string
	variant sim.Variant
	opts    Options

	mu     sync.Mutex
	sim    *sim.Simulator
	input  *sim.InputState
	frame  uint64
	best   int64
	hasRec bool

	relay  *relay.Relay
	scores score.Repo
	bus    eventbus.EventBus
	logger *logging.Logger
}

// NewSession собирает сессию поверх готового мира и хранилища рекордов
func NewSession(w sim.World, repo score.Repo, bus eventbus.EventBus, opts Options) *Session {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.StaleTTL <= 0 {
		opts.StaleTTL = 10 * time.Second
	}
	if opts.SendRateDivisor <= 0 {
		opts.SendRateDivisor = 1
	}

	input := &sim.InputState{}
	return &Session{
		id:      uuid.NewString(),
		variant: opts.Variant,
		opts:    opts,
		sim:     sim.NewSimulator(opts.Variant, w, input),
		input:   input,
		relay:   opts.Relay,
		scores:  repo,
		bus:     bus,
		logger:  logging.GetGameLogger(),
	}
}

// ID возвращает идентификатор сессии
func (s *Session) ID() string { return s.id }

// Run крутит кадровый цикл до отмены контекста. dt берётся из реального
// времени между тиками, так что пропущенные тики не ускоряют симуляцию.
func (s *Session) Run(ctx context.Context) {
	s.loadBest(ctx)

	interval := time.Second / time.Duration(s.opts.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Сессия %s запущена (%s, %d Гц)", s.id, s.variant, s.opts.TickRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Сессия %s остановлена", s.id)
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.step(ctx, dt)
		}
	}
}

// Start переводит симуляцию в Running. Повторный вызов перезапускает
// сессию с нулевым счётом независимо от текущей фазы.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.input.Reset()
	s.sim.Start()
	s.mu.Unlock()

	s.publish(ctx, eventbus.EventSessionStart, map[string]any{
		"session_id": s.id,
		"variant":    s.variant.String(),
	})
	s.logger.Info("Сессия %s: старт (%s)", s.id, s.variant)
}

// Input применяет именованное действие игрока ("accelerate", "brake", ...)
func (s *Session) Input(action string, pressed bool) error {
	a, ok := sim.ParseAction(action)
	if !ok {
		return fmt.Errorf("неизвестное действие: %q", action)
	}

	s.mu.Lock()
	s.input.Set(a, pressed)
	s.mu.Unlock()
	return nil
}

// SetCameraMode переключает режим камеры
func (s *Session) SetCameraMode(m sim.CameraMode) {
	s.mu.Lock()
	s.sim.SetCameraMode(m)
	s.mu.Unlock()
}

// step выполняет один кадр: симуляция, обмен позами, обработка game over
func (s *Session) step(ctx context.Context, dt float64) {
	s.mu.Lock()
	res := s.sim.Step(dt)
	player := s.sim.Player()
	running := s.sim.Phase() == sim.PhaseRunning
	scoreNow := s.sim.Score()
	s.frame++
	frame := s.frame
	s.mu.Unlock()

	framesTotal.Inc()
	if running {
		sessionScore.Set(float64(scoreNow))
	}

	if res.RingsCollected > 0 {
		ringsCollected.Add(float64(res.RingsCollected))
	}
	if res.Collision != nil {
		collisionsTotal.Inc()
		s.publish(ctx, eventbus.EventCollision, map[string]any{
			"session_id": s.id,
			"obstacle":   res.Collision.Type.String(),
			"terminal":   res.Terminal,
		})
	}
	if res.Terminal {
		s.finish(ctx, scoreNow, res)
	}

	if s.relay == nil {
		return
	}

	// Позы шлём только в активной фазе, приём и вытеснение работают всегда
	if running && frame%uint64(s.opts.SendRateDivisor) == 0 {
		s.relay.SendPose(relay.Pose{
			Position: player.Position,
			Heading:  player.Heading,
			Speed:    player.Speed,
		})
	}
	s.relay.Table().Advance(dt)
	for _, id := range s.relay.EvictStale(s.opts.StaleTTL) {
		s.publish(ctx, eventbus.EventPeerEvicted, map[string]any{
			"session_id": s.id,
			"peer_id":    id,
		})
	}
}

// finish фиксирует game over: результат уходит в хранилище,
// событие с итогом — в шину
func (s *Session) finish(ctx context.Context, finalScore int64, res sim.StepResult) {
	gameOvers.Inc()

	obstacle := ""
	if res.Collision != nil {
		obstacle = res.Collision.Type.String()
	}
	s.logger.Info("Сессия %s: game over, счёт %d (%s)", s.id, finalScore, obstacle)

	record, err := s.scores.Submit(ctx, s.variant.String(), finalScore)
	if err != nil {
		s.logger.Error("Ошибка сохранения результата: %v", err)
	}

	s.mu.Lock()
	if record {
		s.best = finalScore
		s.hasRec = true
	}
	s.mu.Unlock()

	s.publish(ctx, eventbus.EventGameOver, map[string]any{
		"session_id": s.id,
		"variant":    s.variant.String(),
		"score":      finalScore,
		"obstacle":   obstacle,
		"record":     record,
	})
	if record {
		s.publish(ctx, eventbus.EventHighScore, map[string]any{
			"variant": s.variant.String(),
			"score":   finalScore,
		})
	}
}

// loadBest подтягивает сохранённый рекорд для HUD
func (s *Session) loadBest(ctx context.Context) {
	best, found, err := s.scores.Best(ctx, s.variant.String())
	if err != nil {
		s.logger.Warn("Рекорд недоступен: %v", err)
		return
	}

	s.mu.Lock()
	s.best, s.hasRec = best, found
	s.mu.Unlock()
}

// publish отправляет событие в шину; ошибки шины не прерывают кадровый цикл
func (s *Session) publish(ctx context.Context, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.NewEnvelope("session", eventType, data)); err != nil {
		s.logger.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}
