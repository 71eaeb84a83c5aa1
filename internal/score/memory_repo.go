package score

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepo реализует Repo в памяти.
// Используется как fallback без хранилища и для тестов.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemoryRepo struct {
	mu   sync.RWMutex
	best map[string]int64
}

// NewMemoryRepo создаёт репозиторий рекордов в памяти
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{best: make(map[string]int64)}
}

// Best загружает рекорд варианта из памяти
func (r *MemoryRepo) Best(ctx context.Context, variant string) (int64, bool, error) {
	if variant == "" {
		return 0, false, fmt.Errorf("пустой вариант игры")
	}

	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	best, exists := r.best[variant]
	return best, exists, nil
}

// Submit сохраняет результат, только если он строго больше рекорда
func (r *MemoryRepo) Submit(ctx context.Context, variant string, value int64) (bool, error) {
	if variant == "" {
		return false, fmt.Errorf("пустой вариант игры")
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.best[variant]; exists && value <= current {
		return false, nil
	}
	r.best[variant] = value
	return true, nil
}

// Close ничего не освобождает
func (r *MemoryRepo) Close() error { return nil }
