// Package relay реализует peer-to-peer реле поз поверх KCP (надёжный UDP).
// Это best-effort поток: без подтверждений, без переподключения,
// без sequence-номеров — каждая принятая поза просто перезаписывает
// предыдущую (last-write-wins).
package relay

import (
	"github.com/annel0/arcade-server/internal/vec"
)

// MessageTypeUpdate — единственный тип сообщения реле
const MessageTypeUpdate = "update"

// Pose — поза игрока, передаваемая каждый тик
type Pose struct {
	Position vec.Vec3Float `json:"position"`
	Heading  float64       `json:"heading"`
	Speed    float64       `json:"speed"`
}

// PoseUpdate — кадр протокола реле
type PoseUpdate struct {
	Type    string `json:"type"`
	Payload Pose   `json:"payload"`
}

// NewPoseUpdate собирает кадр обновления позы
func NewPoseUpdate(pose Pose) *PoseUpdate {
	return &PoseUpdate{Type: MessageTypeUpdate, Payload: pose}
}
