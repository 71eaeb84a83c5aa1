package score

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/arcade-server/internal/logging"
)

// BadgerRepo хранит рекорды в локальной BadgerDB.
// Бэкенд по умолчанию: локальный файл, без внешних сервисов.
type BadgerRepo struct {
	db *badger.DB
}

// NewBadgerRepo открывает BadgerDB в dataPath/scores
func NewBadgerRepo(dataPath string) (*BadgerRepo, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "scores"))
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.GetStorageLogger().Info("BadgerDB открыта: %s", opts.Dir)
	return &BadgerRepo{db: db}, nil
}

// Best загружает рекорд варианта
func (r *BadgerRepo) Best(ctx context.Context, variant string) (int64, bool, error) {
	if variant == "" {
		return 0, false, fmt.Errorf("пустой вариант игры")
	}

	var best int64
	found := false

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + variant))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			parsed, err := strconv.ParseInt(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("повреждённое значение рекорда: %w", err)
			}
			best = parsed
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}

	return best, found, nil
}

// Submit сохраняет результат, только если он строго больше рекорда.
// Сравнение и запись выполняются в одной транзакции.
func (r *BadgerRepo) Submit(ctx context.Context, variant string, value int64) (bool, error) {
	if variant == "" {
		return false, fmt.Errorf("пустой вариант игры")
	}

	updated := false
	key := []byte(keyPrefix + variant)

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			var current int64
			if verr := item.Value(func(val []byte) error {
				parsed, perr := strconv.ParseInt(string(val), 10, 64)
				if perr != nil {
					return fmt.Errorf("повреждённое значение рекорда: %w", perr)
				}
				current = parsed
				return nil
			}); verr != nil {
				return verr
			}
			if value <= current {
				return nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		updated = true
		return txn.Set(key, []byte(strconv.FormatInt(value, 10)))
	})
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения рекорда: %w", err)
	}

	return updated, nil
}

// Close закрывает BadgerDB
func (r *BadgerRepo) Close() error {
	return r.db.Close()
}
