package score

import (
	"context"
	"testing"
)

// TestMemoryRepo тестирует in-memory репозиторий рекордов
func TestMemoryRepo(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	t.Run("First Run Has No Record", func(t *testing.T) {
		best, found, err := repo.Best(ctx, "drive")
		if err != nil {
			t.Fatalf("Ошибка загрузки рекорда: %v", err)
		}
		if found {
			t.Errorf("Рекорд найден при первом запуске: %d", best)
		}
	})

	t.Run("Submit Sets First Record", func(t *testing.T) {
		updated, err := repo.Submit(ctx, "drive", 500)
		if err != nil {
			t.Fatalf("Ошибка сохранения результата: %v", err)
		}
		if !updated {
			t.Error("Первый результат не стал рекордом")
		}

		best, found, _ := repo.Best(ctx, "drive")
		if !found || best != 500 {
			t.Errorf("Неверный рекорд: ожидался 500, получен %d (found=%v)", best, found)
		}
	})

	t.Run("Greater Value Overwrites", func(t *testing.T) {
		updated, err := repo.Submit(ctx, "drive", 700)
		if err != nil {
			t.Fatalf("Ошибка сохранения результата: %v", err)
		}
		if !updated {
			t.Error("Больший результат не обновил рекорд")
		}

		best, _, _ := repo.Best(ctx, "drive")
		if best != 700 {
			t.Errorf("Рекорд не обновлён: %d", best)
		}
	})

	t.Run("Lesser Or Equal Keeps Record", func(t *testing.T) {
		for _, v := range []int64{700, 300} {
			updated, err := repo.Submit(ctx, "drive", v)
			if err != nil {
				t.Fatalf("Ошибка сохранения результата %d: %v", v, err)
			}
			if updated {
				t.Errorf("Результат %d не должен обновлять рекорд 700", v)
			}
		}

		best, _, _ := repo.Best(ctx, "drive")
		if best != 700 {
			t.Errorf("Рекорд изменился: %d", best)
		}
	})

	t.Run("Variants Are Independent", func(t *testing.T) {
		if _, err := repo.Submit(ctx, "glide", 200); err != nil {
			t.Fatalf("Ошибка сохранения результата: %v", err)
		}

		drive, _, _ := repo.Best(ctx, "drive")
		glide, _, _ := repo.Best(ctx, "glide")
		if drive != 700 || glide != 200 {
			t.Errorf("Варианты смешались: drive=%d glide=%d", drive, glide)
		}
	})

	t.Run("Empty Variant Rejected", func(t *testing.T) {
		if _, _, err := repo.Best(ctx, ""); err == nil {
			t.Error("Пустой вариант принят в Best")
		}
		if _, err := repo.Submit(ctx, "", 1); err == nil {
			t.Error("Пустой вариант принят в Submit")
		}
	})
}
