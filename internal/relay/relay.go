package relay

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xtaci/kcp-go/v5"

	"github.com/annel0/arcade-server/internal/logging"
)

// Status — состояние соединения реле, отображается в HUD
type Status int32

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

// String возвращает имя статуса
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Relay обслуживает одно peer-to-peer соединение: хост принимает одного
// входящего пира, гость подключается к хосту. Каждый тик наружу уходит
// поза локального игрока; принятые позы перезаписывают таблицу удалённых
// игроков. Повторных попыток и переподключения нет: ошибка соединения
// переводит реле в StatusError и остаётся флагом для HUD.
type Relay struct {
	sessionID string
	codec     *codec
	table     *RemoteTable
	logger    *logging.Logger

	mu       sync.RWMutex
	conn     *kcp.UDPSession
	listener *kcp.Listener
	status   atomic.Int32

	// Буфер на одну позу: новая поза вытесняет неотправленную —
	// очередь не нужна, ценна только последняя
	sendBuffer chan *PoseUpdate

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelay создаёт реле с новым идентификатором сессии
func NewRelay(useZstd bool) (*Relay, error) {
	c, err := newCodec(useZstd)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		sessionID:  uuid.NewString(),
		codec:      c,
		table:      NewRemoteTable(),
		logger:     logging.GetRelayLogger(),
		sendBuffer: make(chan *PoseUpdate, 1),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SessionID возвращает идентификатор сессии; передаётся пиру out-of-band
func (r *Relay) SessionID() string { return r.sessionID }

// Addr возвращает фактический адрес listener-а (для addr с портом 0)
func (r *Relay) Addr() net.Addr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Table возвращает таблицу удалённых игроков
func (r *Relay) Table() *RemoteTable { return r.table }

// Status возвращает состояние соединения
func (r *Relay) Status() Status { return Status(r.status.Load()) }

// Host начинает слушать входящее соединение на addr.
// Принимается ровно один пир — протокол двусторонний, один на один.
func (r *Relay) Host(addr string) error {
	listener, err := kcp.ListenWithOptions(addr, nil, 10, 3)
	if err != nil {
		r.status.Store(int32(StatusError))
		return fmt.Errorf("kcp listen %s: %w", addr, err)
	}

	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()
	r.status.Store(int32(StatusConnecting))

	r.wg.Add(1)
	go r.acceptLoop(listener)

	r.logger.Info("Реле слушает %s (session=%s)", addr, r.sessionID)
	return nil
}

// Join подключается к хосту по адресу, полученному out-of-band
func (r *Relay) Join(ctx context.Context, addr string) error {
	r.status.Store(int32(StatusConnecting))

	conn, err := kcp.DialWithOptions(addr, nil, 10, 3)
	if err != nil {
		r.status.Store(int32(StatusError))
		return fmt.Errorf("kcp dial %s: %w", addr, err)
	}

	r.attach(conn)
	r.logger.Info("Реле подключено к %s", addr)
	return nil
}

// acceptLoop ждёт одного входящего пира
func (r *Relay) acceptLoop(listener *kcp.Listener) {
	defer r.wg.Done()

	conn, err := listener.AcceptKCP()
	if err != nil {
		// Закрытие listener-а при teardown — не ошибка
		select {
		case <-r.ctx.Done():
		default:
			r.logger.Error("Ошибка accept: %v", err)
			r.status.Store(int32(StatusError))
		}
		return
	}

	r.attach(conn)
	r.logger.Info("Принят пир %s", conn.RemoteAddr())
}

// attach настраивает KCP-сессию под игровой трафик и запускает циклы
func (r *Relay) attach(conn *kcp.UDPSession) {
	conn.SetStreamMode(true)
	conn.SetWriteDelay(false)
	conn.SetNoDelay(1, 20, 2, 1) // Агрессивные настройки для игр
	conn.SetWindowSize(512, 512)
	conn.SetMtu(1400)

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	r.status.Store(int32(StatusConnected))

	r.wg.Add(2)
	go r.sendLoop(conn)
	go r.receiveLoop(conn)
}

// SendPose публикует позу для отправки. Неотправленная поза вытесняется:
// очереди и backpressure нет, передаётся только последнее состояние.
func (r *Relay) SendPose(pose Pose) {
	if r.Status() != StatusConnected {
		return
	}

	msg := NewPoseUpdate(pose)
	for {
		select {
		case r.sendBuffer <- msg:
			return
		default:
			// Вытесняем устаревшую позу
			select {
			case <-r.sendBuffer:
			default:
			}
		}
	}
}

func (r *Relay) sendLoop(conn *kcp.UDPSession) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case msg := <-r.sendBuffer:
			frame, err := r.codec.encode(msg)
			if err != nil {
				r.logger.Error("Ошибка кодирования позы: %v", err)
				continue
			}
			if _, err := conn.Write(frame); err != nil {
				r.connectionLost(conn, err)
				return
			}
			posesSent.Inc()
		}
	}
}

func (r *Relay) receiveLoop(conn *kcp.UDPSession) {
	defer r.wg.Done()

	peerID := conn.RemoteAddr().String()
	for {
		msg, err := r.codec.decode(conn)
		if err != nil {
			r.connectionLost(conn, err)
			return
		}

		if msg.Type != MessageTypeUpdate {
			r.logger.Warn("Неизвестный тип сообщения от %s: %q", peerID, msg.Type)
			continue
		}

		r.table.Apply(peerID, msg.Payload, time.Now())
		posesReceived.Inc()
		peersTracked.Set(float64(r.table.Count()))
	}
}

// connectionLost фиксирует обрыв: пир убирается из таблицы,
// статус остаётся флагом ошибки для HUD
func (r *Relay) connectionLost(conn *kcp.UDPSession, err error) {
	select {
	case <-r.ctx.Done():
		return // плановый teardown
	default:
	}

	peerID := conn.RemoteAddr().String()
	r.table.Remove(peerID)
	peersTracked.Set(float64(r.table.Count()))
	r.status.Store(int32(StatusError))
	r.logger.Warn("Соединение с %s потеряно: %v", peerID, err)
}

// EvictStale вытесняет молчащих пиров и возвращает их идентификаторы;
// вызывается кадровым циклом
func (r *Relay) EvictStale(ttl time.Duration) []string {
	evicted := r.table.EvictStale(time.Now(), ttl)
	for _, id := range evicted {
		peersEvicted.Inc()
		r.logger.Info("Пир %s вытеснен по таймауту", id)
	}
	if len(evicted) > 0 {
		peersTracked.Set(float64(r.table.Count()))
	}
	return evicted
}

// Close останавливает циклы и освобождает соединение
func (r *Relay) Close() error {
	r.cancel()

	r.mu.Lock()
	if r.listener != nil {
		r.listener.Close()
	}
	var err error
	if r.conn != nil {
		err = r.conn.Close()
	}
	r.mu.Unlock()

	r.wg.Wait()
	r.status.Store(int32(StatusIdle))
	r.logger.Info("Реле остановлено")
	return err
}
