package sim

// Action определяет логическое игровое действие.
// Фиксированное перечисление вместо карты "клавиша -> флаг":
// клавиатура и тач-зоны презентационного слоя маппятся на эти действия.
type Action int

const (
	ActionAccelerate Action = iota
	ActionBrake
	ActionSteerLeft
	ActionSteerRight
	ActionClimb
	ActionDescend
	actionCount
)

// ParseAction возвращает действие по имени из внешнего интерфейса
func ParseAction(name string) (Action, bool) {
	switch name {
	case "accelerate":
		return ActionAccelerate, true
	case "brake":
		return ActionBrake, true
	case "steer_left":
		return ActionSteerLeft, true
	case "steer_right":
		return ActionSteerRight, true
	case "climb":
		return ActionClimb, true
	case "descend":
		return ActionDescend, true
	default:
		return 0, false
	}
}

// InputState хранит текущее состояние дискретных флагов ввода.
// Пишется обработчиками событий, читается кадровым циклом;
// синхронизацию обеспечивает владелец (Session).
type InputState struct {
	pressed [actionCount]bool
}

// Set устанавливает состояние действия (нажато/отпущено)
func (in *InputState) Set(a Action, pressed bool) {
	if a >= 0 && a < actionCount {
		in.pressed[a] = pressed
	}
}

// Pressed сообщает, нажато ли действие
func (in *InputState) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return in.pressed[a]
}

// Reset отпускает все действия
func (in *InputState) Reset() {
	in.pressed = [actionCount]bool{}
}
