package sim

import (
	"math"

	"github.com/annel0/arcade-server/internal/vec"
)

// CameraMode определяет режим камеры
type CameraMode int

const (
	CameraChase    CameraMode = iota // Третье лицо, позади игрока
	CameraCockpit                    // Первое лицо, в кабине
	CameraOverhead                   // Вид сверху
)

// ParseCameraMode возвращает режим по имени из внешнего интерфейса
func ParseCameraMode(name string) (CameraMode, bool) {
	switch name {
	case "chase":
		return CameraChase, true
	case "cockpit":
		return CameraCockpit, true
	case "overhead":
		return CameraOverhead, true
	default:
		return 0, false
	}
}

// String возвращает имя режима для HUD
func (m CameraMode) String() string {
	switch m {
	case CameraChase:
		return "chase"
	case CameraCockpit:
		return "cockpit"
	case CameraOverhead:
		return "overhead"
	default:
		return "unknown"
	}
}

// Константы камеры
const (
	chaseDistance  = 12.0
	chaseHeight    = 5.0
	overheadHeight = 80.0
	cockpitHeight  = 1.4

	cameraLerp = 5.0 // Скорость экспоненциального сглаживания позы

	fovBase      = 60.0 // Базовое поле зрения, градусы
	fovSpeedGain = 15.0 // Прибавка на максимальной скорости
	fovLerp      = 4.0
)

// CameraState хранит сглаженную позу камеры и поле зрения.
// Значения косметические: обратной связи в физику нет.
type CameraState struct {
	Position vec.Vec3Float
	LookAt   vec.Vec3Float
	FOV      float64
}

// targetPose возвращает целевую позу камеры для режима как фиксированное
// смещение от позы игрока
func targetPose(player vec.Vec3Float, heading float64, mode CameraMode) (pos, lookAt vec.Vec3Float) {
	forward := vec.Vec3Float{X: math.Sin(heading), Z: math.Cos(heading)}

	switch mode {
	case CameraCockpit:
		pos = player.Add(vec.Vec3Float{Y: cockpitHeight})
		lookAt = pos.Add(forward.Mul(10))
	case CameraOverhead:
		pos = player.Add(vec.Vec3Float{Y: overheadHeight})
		lookAt = player
	default: // chase
		pos = player.Sub(forward.Mul(chaseDistance)).Add(vec.Vec3Float{Y: chaseHeight})
		lookAt = player.Add(vec.Vec3Float{Y: 1.5})
	}
	return pos, lookAt
}

// update сглаживает камеру к целевой позе. Режим кабины прыгает мгновенно,
// остальные — экспоненциальная интерполяция. FOV тянется к цели,
// зависящей от скорости.
func (c *CameraState) update(player vec.Vec3Float, heading, speed, maxSpeed, dt float64, mode CameraMode) {
	targetPos, targetLook := targetPose(player, heading, mode)

	if mode == CameraCockpit {
		c.Position = targetPos
		c.LookAt = targetLook
	} else {
		t := math.Min(1, cameraLerp*dt)
		c.Position = c.Position.LerpTo(targetPos, t)
		c.LookAt = c.LookAt.LerpTo(targetLook, t)
	}

	fovTarget := fovBase
	if maxSpeed > 0 {
		fovTarget += fovSpeedGain * math.Abs(speed) / maxSpeed
	}
	c.FOV += (fovTarget - c.FOV) * math.Min(1, fovLerp*dt)
}
