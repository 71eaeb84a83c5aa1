package relay

import (
	"math"
	"sync"
	"time"

	"github.com/annel0/arcade-server/internal/vec"
)

// RemotePlayerState отслеживает позу удалённого игрока.
// Отображаемая поза тянется к целевой (клиентская интерполяция),
// целевая перезаписывается каждым принятым пакетом.
type RemotePlayerState struct {
	Position       vec.Vec3Float // Отображаемая (интерполированная) позиция
	TargetPosition vec.Vec3Float // Последняя принятая позиция
	TargetHeading  float64
	Speed          float64
	LastUpdate     time.Time
}

// interpLerp — скорость подтягивания отображаемой позы к целевой
const interpLerp = 10.0

// RemoteTable — таблица удалённых игроков по идентификатору пира.
// Записи перезаписываются по принципу last-write-wins: порядок доставки
// не проверяется, устаревший пакет перезапишет более новый — принятое
// ограничение визуального best-effort потока.
type RemoteTable struct {
	mu    sync.RWMutex
	peers map[string]*RemotePlayerState
}

// NewRemoteTable создаёт пустую таблицу
func NewRemoteTable() *RemoteTable {
	return &RemoteTable{peers: make(map[string]*RemotePlayerState)}
}

// Apply создаёт или перезаписывает запись пира принятой позой
func (rt *RemoteTable) Apply(peerID string, pose Pose, now time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, exists := rt.peers[peerID]
	if !exists {
		// Первый пакет от пира: отображаемая поза совпадает с целевой,
		// чтобы не тянуть машину из начала координат
		rt.peers[peerID] = &RemotePlayerState{
			Position:       pose.Position,
			TargetPosition: pose.Position,
			TargetHeading:  pose.Heading,
			Speed:          pose.Speed,
			LastUpdate:     now,
		}
		return
	}

	state.TargetPosition = pose.Position
	state.TargetHeading = pose.Heading
	state.Speed = pose.Speed
	state.LastUpdate = now
}

// Advance подтягивает отображаемые позы к целевым. Вызывается кадровым циклом.
func (rt *RemoteTable) Advance(dt float64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	t := math.Min(1, interpLerp*dt)
	for _, state := range rt.peers {
		state.Position = state.Position.LerpTo(state.TargetPosition, t)
	}
}

// EvictStale удаляет пиров, молчащих дольше ttl, и возвращает их идентификаторы.
// Без этого пир, переставший слать позы, оставался бы замороженным
// призраком до явного закрытия соединения.
func (rt *RemoteTable) EvictStale(now time.Time, ttl time.Duration) []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var evicted []string
	for id, state := range rt.peers {
		if now.Sub(state.LastUpdate) > ttl {
			delete(rt.peers, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Remove удаляет пира при закрытии соединения
func (rt *RemoteTable) Remove(peerID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.peers, peerID)
}

// Get возвращает копию состояния пира
func (rt *RemoteTable) Get(peerID string) (RemotePlayerState, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	state, exists := rt.peers[peerID]
	if !exists {
		return RemotePlayerState{}, false
	}
	return *state, true
}

// Snapshot возвращает копию таблицы для рендера/HUD
func (rt *RemoteTable) Snapshot() map[string]RemotePlayerState {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	result := make(map[string]RemotePlayerState, len(rt.peers))
	for id, state := range rt.peers {
		result[id] = *state
	}
	return result
}

// Count возвращает число отслеживаемых пиров
func (rt *RemoteTable) Count() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.peers)
}
