package eventbus

import (
	"context"

	"github.com/annel0/arcade-server/internal/logging"
)

// StartLoggingListener подписывает логгер на все события шины.
// Используется при отладке: каждое событие попадает в лог компонента eventbus.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	return bus.Subscribe(ctx, Filter{}, func(_ context.Context, ev *Envelope) {
		logging.Debug("🔔 Событие %s от %s (id=%s)", ev.EventType, ev.Source, ev.ID)
	})
}
