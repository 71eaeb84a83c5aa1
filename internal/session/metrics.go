package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики кадрового цикла. promauto регистрирует их в дефолтном регистре.
var (
	framesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "session",
		Name:      "frames_total",
		Help:      "Общее число кадров симуляции.",
	})

	collisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "session",
		Name:      "collisions_total",
		Help:      "Число коллизий (включая отскоки).",
	})

	gameOvers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "session",
		Name:      "game_overs_total",
		Help:      "Число завершённых сессий (game over).",
	})

	ringsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "session",
		Name:      "rings_collected_total",
		Help:      "Собрано колец (вариант glide).",
	})

	sessionScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arcade",
		Subsystem: "session",
		Name:      "score",
		Help:      "Счёт активной сессии.",
	})
)
