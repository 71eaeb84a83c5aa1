package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Game     GameConfig     `yaml:"game"`
	Relay    RelayConfig    `yaml:"relay"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	EventBus EventBusConfig `yaml:"eventbus"`
}

// GameConfig описывает игровой вариант и генерацию мира
type GameConfig struct {
	Variant   string `yaml:"variant"`    // "drive" или "glide"
	WorldSeed int64  `yaml:"world_seed"` // 0 — случайный сид
	TickRate  int    `yaml:"tick_rate"`  // Частота симуляции (кадров в секунду)
}

// RelayConfig описывает peer-to-peer реле позиций (только вариант drive)
type RelayConfig struct {
	Listen          string `yaml:"listen"`            // Адрес для входящего соединения
	Peer            string `yaml:"peer"`              // Адрес пира для исходящего соединения
	StaleAfterSec   int    `yaml:"stale_after_sec"`   // TTL до вытеснения молчащего пира
	UseZstd         bool   `yaml:"use_zstd"`          // Сжатие кадров реле
	SendRateDivisor int    `yaml:"send_rate_divisor"` // Слать позу каждый N-й тик
}

// ServerConfig описывает порты внешних интерфейсов
type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// StorageConfig описывает хранилище рекордов
type StorageConfig struct {
	Backend   string `yaml:"backend"` // memory | badger | redis | maria
	Path      string `yaml:"path"`    // Директория BadgerDB
	RedisAddr string `yaml:"redis_addr"`
	MariaDSN  string `yaml:"maria_dsn"`
}

// EventBusConfig описывает шину событий
type EventBusConfig struct {
	URL       string `yaml:"url"` // NATS URL; пусто — in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

// GetVariant возвращает игровой вариант с дефолтом drive
func (g *GameConfig) GetVariant() string {
	if g.Variant != "" {
		return g.Variant
	}
	if v := os.Getenv("ARCADE_VARIANT"); v != "" {
		return v
	}
	return "drive"
}

// GetTickRate возвращает частоту симуляции с дефолтом 60 Гц
func (g *GameConfig) GetTickRate() int {
	if g.TickRate > 0 {
		return g.TickRate
	}
	return 60
}

// GetRESTPort возвращает REST порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "ARCADE_REST_PORT", 8090)
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "ARCADE_METRICS_PORT", 2112)
}

// GetBackend возвращает бэкенд хранилища с дефолтом badger
func (st *StorageConfig) GetBackend() string {
	if st.Backend != "" {
		return st.Backend
	}
	return "badger"
}

// GetPath возвращает путь к данным с дефолтом ./data
func (st *StorageConfig) GetPath() string {
	if st.Path != "" {
		return st.Path
	}
	return "data"
}

// StaleAfter возвращает TTL вытеснения пира с дефолтом 10 секунд
func (r *RelayConfig) StaleAfter() time.Duration {
	if r.StaleAfterSec > 0 {
		return time.Duration(r.StaleAfterSec) * time.Second
	}
	return 10 * time.Second
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV ARCADE_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ARCADE_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
