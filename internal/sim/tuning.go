package sim

// Tuning содержит физические константы варианта игры.
// Значения подобраны под аркадное ощущение, а не под реализм.
type Tuning struct {
	MaxSpeed      float64 // Максимальная скорость вперёд; назад — половина
	Accel         float64 // Ускорение при газе, юнитов/с²
	BrakeDecel    float64 // Замедление при торможении (сильнее ускорения)
	ReverseAccel  float64 // Ускорение заднего хода после остановки
	Friction      float64 // Коэффициент затухания скорости за эталонный кадр
	SnapSpeed     float64 // Порог прилипания скорости к нулю
	SteerRate     float64 // Угловая скорость руления, рад/с
	MinSteerSpeed float64 // Ниже этой скорости руль не действует
	MaxFrameDelta float64 // Верхняя граница dt, защита от больших шагов интеграции
	PlayerRadius  float64 // Радиус игрока для коллизий
	TerrainLerp   float64 // Скорость сглаживания высоты к ландшафту
	ClimbRate     float64 // Вертикальная скорость набора/сброса высоты (glide)
	MinAltitude   float64 // Минимальная высота над ландшафтом (glide)
}

// referenceFPS — эталонная частота кадров для нормализации затухания:
// friction^(dt*referenceFPS) даёт одинаковое затухание при любом fps.
const referenceFPS = 60.0

// DriveTuning возвращает константы городского вождения
func DriveTuning() Tuning {
	return Tuning{
		MaxSpeed:      45.0,
		Accel:         18.0,
		BrakeDecel:    36.0,
		ReverseAccel:  12.0,
		Friction:      0.985,
		SnapSpeed:     0.15,
		SteerRate:     1.6,
		MinSteerSpeed: 0.8,
		MaxFrameDelta: 0.1,
		PlayerRadius:  1.2,
		TerrainLerp:   8.0,
	}
}

// GlideTuning возвращает константы полёта
func GlideTuning() Tuning {
	return Tuning{
		MaxSpeed:      70.0,
		Accel:         22.0,
		BrakeDecel:    30.0,
		ReverseAccel:  0, // задний ход в полёте не моделируется
		Friction:      0.992,
		SnapSpeed:     0.15,
		SteerRate:     1.1,
		MinSteerSpeed: 2.0,
		MaxFrameDelta: 0.1,
		PlayerRadius:  2.0,
		ClimbRate:     16.0,
		MinAltitude:   1.5,
	}
}
