package score

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MariaRepo хранит рекорды и таблицу лучших результатов в MariaDB.
// Помимо единственного рекорда на вариант (контракт Repo) ведёт
// журнал результатов сессий для таблицы лидеров.
type MariaRepo struct {
	db *sql.DB
}

// NewMariaRepo подключается к MariaDB по DSN и создаёт схему при необходимости
func NewMariaRepo(dsn string) (*MariaRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}

	repo := &MariaRepo{db: db}
	if err := repo.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *MariaRepo) ensureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS arcade_scores (
			id         BIGINT AUTO_INCREMENT PRIMARY KEY,
			variant    VARCHAR(32) NOT NULL,
			score      BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_variant_score (variant, score DESC)
		)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}
	return nil
}

// Best загружает рекорд варианта (максимум по журналу)
func (r *MariaRepo) Best(ctx context.Context, variant string) (int64, bool, error) {
	if variant == "" {
		return 0, false, fmt.Errorf("пустой вариант игры")
	}

	var best sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(score) FROM arcade_scores WHERE variant = ?`, variant).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}
	if !best.Valid {
		return 0, false, nil
	}
	return best.Int64, true, nil
}

// Submit записывает результат сессии в журнал.
// Рекорд обновлён, если значение строго больше прежнего максимума.
func (r *MariaRepo) Submit(ctx context.Context, variant string, value int64) (bool, error) {
	if variant == "" {
		return false, fmt.Errorf("пустой вариант игры")
	}

	current, found, err := r.Best(ctx, variant)
	if err != nil {
		return false, err
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO arcade_scores (variant, score) VALUES (?, ?)`, variant, value); err != nil {
		return false, fmt.Errorf("ошибка сохранения результата: %w", err)
	}

	return !found || value > current, nil
}

// Top возвращает N лучших результатов варианта для таблицы лидеров
func (r *MariaRepo) Top(ctx context.Context, variant string, n int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT score FROM arcade_scores WHERE variant = ? ORDER BY score DESC LIMIT ?`,
		variant, n)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки таблицы лидеров: %w", err)
	}
	defer rows.Close()

	var scores []int64
	for rows.Next() {
		var s int64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// Close закрывает подключение к MariaDB
func (r *MariaRepo) Close() error {
	return r.db.Close()
}
