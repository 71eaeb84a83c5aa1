package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/arcade-server/internal/api"
	"github.com/annel0/arcade-server/internal/config"
	"github.com/annel0/arcade-server/internal/eventbus"
	"github.com/annel0/arcade-server/internal/logging"
	"github.com/annel0/arcade-server/internal/observability"
	"github.com/annel0/arcade-server/internal/relay"
	"github.com/annel0/arcade-server/internal/score"
	"github.com/annel0/arcade-server/internal/session"
	"github.com/annel0/arcade-server/internal/sim"
	"github.com/annel0/arcade-server/internal/world"
)

func main() {
	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	// === КОНФИГУРАЦИЯ ===
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации")
		variantArg = flag.String("variant", "", "Вариант игры: drive | glide")
		seedArg    = flag.Int64("seed", 0, "Сид генерации мира (0 — случайный)")
		hostArg    = flag.String("host", "", "Слушать входящего пира на адресе (drive)")
		joinArg    = flag.String("join", "", "Подключиться к хосту по адресу (drive)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if *variantArg != "" {
		cfg.Game.Variant = *variantArg
	}
	if *seedArg != 0 {
		cfg.Game.WorldSeed = *seedArg
	}
	if *hostArg != "" {
		cfg.Relay.Listen = *hostArg
	}
	if *joinArg != "" {
		cfg.Relay.Peer = *joinArg
	}

	variant, err := sim.ParseVariant(cfg.Game.GetVariant())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	logging.Info("🎮 Запуск Arcade Server: вариант %s, %d Гц", variant, cfg.Game.GetTickRate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === OBSERVABILITY ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, "arcade-server")
	if err != nil {
		logging.Warn("Телеметрия недоступна: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		jsBus, err := eventbus.NewJetStreamBus(&eventbus.JetStreamConfig{
			URL:       cfg.EventBus.URL,
			Stream:    cfg.EventBus.Stream,
			MaxAge:    time.Duration(cfg.EventBus.Retention) * time.Hour,
			MaxEvents: 100000,
		})
		if err != nil {
			logging.Error("❌ Ошибка подключения к NATS: %v", err)
			log.Fatalf("❌ Ошибка подключения к NATS: %v", err)
		}
		defer jsBus.Close()
		bus = jsBus
		logging.Info("📨 Шина событий: NATS JetStream (%s)", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(256)
		logging.Info("📨 Шина событий: in-memory")
	}

	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		logging.Warn("Лог-слушатель шины не запущен: %v", err)
	}

	// === ХРАНИЛИЩЕ РЕКОРДОВ ===
	repo, err := buildScoreRepo(&cfg.Storage)
	if err != nil {
		logging.Error("❌ Ошибка инициализации хранилища рекордов: %v", err)
		log.Fatalf("❌ Ошибка инициализации хранилища рекордов: %v", err)
	}
	defer repo.Close()
	logging.Info("💾 Хранилище рекордов: %s", cfg.Storage.GetBackend())

	// === МИР ===
	seed := cfg.Game.WorldSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	generator := world.NewGenerator(seed)
	generator.Generate()
	if variant == sim.VariantGlide {
		generator.GenerateRingCourse()
	}
	logging.Info("🌍 Мир сгенерирован: сид %d, %d объектов", seed, len(generator.Entities()))

	// === РЕЛЕ (мультиплеер, только drive) ===
	var peerRelay *relay.Relay
	if variant == sim.VariantDrive && (cfg.Relay.Listen != "" || cfg.Relay.Peer != "") {
		peerRelay, err = relay.NewRelay(cfg.Relay.UseZstd)
		if err != nil {
			log.Fatalf("❌ Ошибка создания реле: %v", err)
		}
		defer peerRelay.Close()

		switch {
		case cfg.Relay.Listen != "":
			if err := peerRelay.Host(cfg.Relay.Listen); err != nil {
				log.Fatalf("❌ Ошибка запуска реле: %v", err)
			}
			logging.Info("🔗 Реле: ожидание пира на %s", cfg.Relay.Listen)
		case cfg.Relay.Peer != "":
			if err := peerRelay.Join(ctx, cfg.Relay.Peer); err != nil {
				// Обрыв мультиплеера не мешает одиночной игре
				logging.Warn("Подключение к пиру не удалось: %v", err)
			} else {
				logging.Info("🔗 Реле: подключено к %s", cfg.Relay.Peer)
			}
		}
	}

	// === СЕССИЯ ===
	sess := session.NewSession(generator, repo, bus, session.Options{
		Variant:         variant,
		TickRate:        cfg.Game.GetTickRate(),
		Relay:           peerRelay,
		StaleTTL:        cfg.Relay.StaleAfter(),
		SendRateDivisor: cfg.Relay.SendRateDivisor,
	})
	go sess.Run(ctx)
	sess.Start(ctx)

	// === REST API ===
	restServer := api.NewRestServer(api.Config{
		Port:      portString(cfg.Server.GetRESTPort()),
		Session:   sess,
		Scores:    repo,
		Generator: generator,
	})
	go func() {
		if err := restServer.Start(); err != nil {
			logging.Error("❌ REST сервер остановлен: %v", err)
		}
	}()

	// Отдельный endpoint метрик для Prometheus scrape
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(portString(cfg.Server.GetMetricsPort()), mux); err != nil {
			logging.Error("❌ Сервер метрик остановлен: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", portString(cfg.Server.GetRESTPort()))
	logging.Info("   ❤️  Health check: http://localhost%s/health", portString(cfg.Server.GetRESTPort()))
	logging.Info("   📊 Метрики: http://localhost%s/metrics", portString(cfg.Server.GetMetricsPort()))

	// Ждём сигнала для завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Телеметрия не остановилась чисто: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// buildScoreRepo выбирает бэкенд хранилища рекордов по конфигурации
func buildScoreRepo(cfg *config.StorageConfig) (score.Repo, error) {
	switch cfg.GetBackend() {
	case "memory":
		return score.NewMemoryRepo(), nil
	case "badger":
		return score.NewBadgerRepo(cfg.GetPath())
	case "redis":
		rc := score.DefaultRedisConfig()
		if cfg.RedisAddr != "" {
			rc.Addr = cfg.RedisAddr
		}
		return score.NewRedisRepo(rc)
	case "maria":
		return score.NewMariaRepo(cfg.MariaDSN)
	default:
		return score.NewBadgerRepo(cfg.GetPath())
	}
}

func portString(port int) string {
	return ":" + strconv.Itoa(port)
}
