package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arcade-server/internal/eventbus"
	"github.com/annel0/arcade-server/internal/score"
	"github.com/annel0/arcade-server/internal/session"
	"github.com/annel0/arcade-server/internal/sim"
	"github.com/annel0/arcade-server/internal/world"
)

// TestSessionEndToEnd гоняет полную сборку: сгенерированный мир,
// кадровый цикл на реальном тикере, ввод через публичный API
func TestSessionEndToEnd(t *testing.T) {
	gen := world.NewGenerator(2024)
	gen.Generate()
	require.NotEmpty(t, gen.Entities())

	repo := score.NewMemoryRepo()
	bus := eventbus.NewMemoryBus(64)

	sess := session.NewSession(gen, repo, bus, session.Options{
		Variant:  sim.VariantDrive,
		TickRate: 60,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	sess.Start(ctx)
	require.NoError(t, sess.Input("accelerate", true))

	// Две секунды реального времени: игрок должен разогнаться и набрать очки
	require.Eventually(t, func() bool {
		hud := sess.HUD()
		return hud.Speed > 1 && hud.Score > 0
	}, 5*time.Second, 100*time.Millisecond, "Игрок не разогнался за отведённое время")

	hud := sess.HUD()
	assert.Equal(t, "drive", hud.Variant)
	assert.NotEmpty(t, hud.Zone)
	// Разогнавшись, игрок мог успеть столкнуться — допустимы обе фазы
	assert.Contains(t, []string{"running", "idle"}, hud.Phase)
}

// TestGlideSessionHasRings: в варианте glide мир содержит трассу из колец
func TestGlideSessionHasRings(t *testing.T) {
	gen := world.NewGenerator(7)
	gen.Generate()
	gen.GenerateRingCourse()

	rings := 0
	for _, e := range gen.Entities() {
		if e.Type == world.EntityTypeRing {
			rings++
		}
	}
	require.Greater(t, rings, 0, "Трасса колец не сгенерирована")

	repo := score.NewMemoryRepo()
	bus := eventbus.NewMemoryBus(64)
	sess := session.NewSession(gen, repo, bus, session.Options{
		Variant:  sim.VariantGlide,
		TickRate: 60,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	sess.Start(ctx)
	hud := sess.HUD()
	assert.Equal(t, "glide", hud.Variant)
	assert.Equal(t, "running", hud.Phase)
	assert.Greater(t, hud.Position.Y, 1.0, "Полёт стартует в воздухе")
}
