package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики реле. promauto регистрирует их в дефолтном регистре.
var (
	posesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "relay",
		Name:      "poses_sent_total",
		Help:      "Отправлено кадров позы.",
	})

	posesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "relay",
		Name:      "poses_received_total",
		Help:      "Принято кадров позы.",
	})

	peersEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arcade",
		Subsystem: "relay",
		Name:      "peers_evicted_total",
		Help:      "Пиров вытеснено по таймауту молчания.",
	})

	peersTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arcade",
		Subsystem: "relay",
		Name:      "peers",
		Help:      "Отслеживаемых удалённых пиров.",
	})
)
