package score

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRepo хранит рекорды в Redis.
// Подходит, когда несколько инстансов делят общую таблицу рекордов.
type RedisRepo struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr: "localhost:6379",
	}
}

// NewRedisRepo подключается к Redis и проверяет соединение
func NewRedisRepo(cfg *RedisConfig) (*RedisRepo, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisRepo{client: client, keyPrefix: "arcade:" + keyPrefix}, nil
}

// Best загружает рекорд варианта
func (r *RedisRepo) Best(ctx context.Context, variant string) (int64, bool, error) {
	if variant == "" {
		return 0, false, fmt.Errorf("пустой вариант игры")
	}

	val, err := r.client.Get(ctx, r.keyPrefix+variant).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}

	best, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("повреждённое значение рекорда: %w", err)
	}
	return best, true, nil
}

// Submit сохраняет результат, только если он строго больше рекорда.
// Сравнение и запись атомарны через WATCH-транзакцию.
func (r *RedisRepo) Submit(ctx context.Context, variant string, value int64) (bool, error) {
	if variant == "" {
		return false, fmt.Errorf("пустой вариант игры")
	}

	key := r.keyPrefix + variant
	updated := false

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			current, perr := strconv.ParseInt(val, 10, 64)
			if perr != nil {
				return fmt.Errorf("повреждённое значение рекорда: %w", perr)
			}
			if value <= current {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, strconv.FormatInt(value, 10), 0)
			return nil
		})
		if err == nil {
			updated = true
		}
		return err
	}, key)
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения рекорда: %w", err)
	}

	return updated, nil
}

// Close закрывает подключение к Redis
func (r *RedisRepo) Close() error {
	return r.client.Close()
}
