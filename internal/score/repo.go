// Package score хранит рекорды игровых вариантов
package score

import "context"

// Repo определяет интерфейс хранилища рекордов.
// Рекорд — одно целое число на вариант игры под фиксированным ключом:
// читается при старте, перезаписывается по окончании сессии только
// если значение сессии строго больше сохранённого.
type Repo interface {
	// Best загружает рекорд варианта.
	// Возвращает:
	//   int64 - сохранённый рекорд
	//   bool  - true если рекорд найден, false при первом запуске
	//   error - ошибка при загрузке
	Best(ctx context.Context, variant string) (int64, bool, error)

	// Submit фиксирует результат сессии.
	// Сохраняет значение только если оно строго больше текущего рекорда.
	// Возвращает:
	//   bool  - true если рекорд обновлён
	//   error - ошибка при сохранении
	Submit(ctx context.Context, variant string, value int64) (bool, error)

	// Close освобождает ресурсы хранилища
	Close() error
}

// keyPrefix — фиксированный префикс ключа рекорда
const keyPrefix = "highscore:"
