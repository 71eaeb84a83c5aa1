package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// JetStreamBus публикует события сессий в NATS JetStream.
// Используется, когда рекорды и телеметрия сессий собираются централизованно.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string

	published uint64
	consumed  uint64
	dropped   uint64
}

// JetStreamConfig настройки подключения к NATS
type JetStreamConfig struct {
	URL       string
	Stream    string
	MaxAge    time.Duration
	MaxEvents int64
}

// DefaultJetStreamConfig возвращает конфигурацию по умолчанию
func DefaultJetStreamConfig() *JetStreamConfig {
	return &JetStreamConfig{
		URL:       nats.DefaultURL,
		Stream:    "ARCADE",
		MaxAge:    24 * time.Hour,
		MaxEvents: 100000,
	}
}

// NewJetStreamBus подключается к NATS и создаёт стрим при необходимости
func NewJetStreamBus(cfg *JetStreamConfig) (*JetStreamBus, error) {
	if cfg == nil {
		cfg = DefaultJetStreamConfig()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.StreamInfo(cfg.Stream)
	if err == nats.ErrStreamNotFound {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{"arcade.>"},
			MaxAge:   cfg.MaxAge,
			MaxMsgs:  cfg.MaxEvents,
			Storage:  nats.FileStorage,
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("stream setup: %w", err)
	}

	return &JetStreamBus{nc: nc, js: js, stream: cfg.Stream}, nil
}

// Publish отправляет событие в subject arcade.<тип события>
func (b *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("сериализация события: %w", err)
	}

	subject := "arcade." + ev.EventType
	if _, err := b.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		atomic.AddUint64(&b.dropped, 1)
		return fmt.Errorf("публикация %s: %w", subject, err)
	}

	atomic.AddUint64(&b.published, 1)
	return nil
}

// Subscribe подписывается на события по фильтру.
// Пустой фильтр типов означает все subjects стрима.
func (b *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subject := "arcade.>"
	if len(f.Types) == 1 {
		subject = "arcade." + f.Types[0]
	}

	sub, err := b.js.Subscribe(subject, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			msg.Term()
			return
		}
		if !matchFilter(&ev, f) {
			msg.Ack()
			return
		}

		h(ctx, &ev)
		atomic.AddUint64(&b.consumed, 1)
		msg.Ack()
	}, nats.ManualAck(), nats.Durable(durableName(subject)))
	if err != nil {
		return nil, fmt.Errorf("подписка %s: %w", subject, err)
	}

	return &jetSub{sub: sub}, nil
}

// Metrics возвращает счётчики шины
func (b *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&b.published),
		Consumed:  atomic.LoadUint64(&b.consumed),
		Dropped:   atomic.LoadUint64(&b.dropped),
	}
}

// Close закрывает подключение к NATS
func (b *JetStreamBus) Close() {
	b.nc.Close()
}

func durableName(subject string) string {
	name := strings.NewReplacer(".", "_", ">", "all", "*", "any").Replace(subject)
	return "arcade_" + name
}

type jetSub struct {
	sub *nats.Subscription
}

func (s *jetSub) Unsubscribe() {
	_ = s.sub.Unsubscribe()
}
