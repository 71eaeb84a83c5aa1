package session

import (
	"github.com/annel0/arcade-server/internal/relay"
	"github.com/annel0/arcade-server/internal/sim"
	"github.com/annel0/arcade-server/internal/vec"
)

// PeerPose — поза удалённого игрока для рендера
type PeerPose struct {
	ID       string        `json:"id"`
	Position vec.Vec3Float `json:"position"`
	Heading  float64       `json:"heading"`
}

// HUDState — снимок сессии для презентационного слоя: счёт, скорость,
// район, камера и состояние мультиплеера
type HUDState struct {
	SessionID  string          `json:"session_id"`
	Variant    string          `json:"variant"`
	Phase      string          `json:"phase"`
	Score      int64           `json:"score"`
	HighScore  int64           `json:"high_score"`
	HasRecord  bool            `json:"has_record"`
	Speed      float64         `json:"speed"`
	Zone       string          `json:"zone,omitempty"`
	Position   vec.Vec3Float   `json:"position"`
	Heading    float64         `json:"heading"`
	Roll       float64         `json:"roll"`
	Pitch      float64         `json:"pitch"`
	Camera     sim.CameraState `json:"camera"`
	CameraMode string          `json:"camera_mode"`
	Relay      string          `json:"relay"`
	Peers      []PeerPose      `json:"peers,omitempty"`
}

// HUD возвращает консистентный снимок состояния сессии
func (s *Session) HUD() HUDState {
	s.mu.Lock()
	player := s.sim.Player()
	roll, pitch := s.sim.Tilt()
	hud := HUDState{
		SessionID:  s.id,
		Variant:    s.variant.String(),
		Phase:      s.sim.Phase().String(),
		Score:      s.sim.Score(),
		HighScore:  s.best,
		HasRecord:  s.hasRec,
		Speed:      player.Speed,
		Zone:       s.sim.Zone(),
		Position:   player.Position,
		Heading:    player.Heading,
		Roll:       roll,
		Pitch:      pitch,
		Camera:     s.sim.Camera(),
		CameraMode: s.sim.CameraMode().String(),
		Relay:      relay.StatusIdle.String(),
	}
	s.mu.Unlock()

	if s.relay != nil {
		hud.Relay = s.relay.Status().String()
		for id, state := range s.relay.Table().Snapshot() {
			hud.Peers = append(hud.Peers, PeerPose{
				ID:       id,
				Position: state.Position,
				Heading:  state.TargetHeading,
			})
		}
	}
	return hud
}
