// Диагностический клиент реле: подключается к хосту, шлёт синтетические
// позы по кругу и печатает позы пира. Используется для ручной проверки
// мультиплеера без второго игрового инстанса.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/arcade-server/internal/logging"
	"github.com/annel0/arcade-server/internal/relay"
	"github.com/annel0/arcade-server/internal/vec"
)

func main() {
	var (
		addr = flag.String("addr", "127.0.0.1:7777", "Адрес хоста реле")
		hz   = flag.Int("hz", 20, "Частота отправки поз")
		zstd = flag.Bool("zstd", false, "Сжимать кадры zstd")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("relay-probe"); err != nil {
		log.Fatalf("Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	r, err := relay.NewRelay(*zstd)
	if err != nil {
		log.Fatalf("Ошибка создания реле: %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Join(ctx, *addr); err != nil {
		log.Fatalf("Подключение к %s не удалось: %v", *addr, err)
	}
	fmt.Printf("Подключено к %s (session=%s)\n", *addr, r.SessionID())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(*hz))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-sigCh:
			fmt.Println("Остановка")
			return
		case <-ticker.C:
			// Синтетическая поза: движение по окружности радиуса 50
			t := time.Since(start).Seconds()
			r.SendPose(relay.Pose{
				Position: vec.Vec3Float{
					X: 50 * math.Cos(t*0.5),
					Z: 50 * math.Sin(t*0.5),
				},
				Heading: t * 0.5,
				Speed:   25,
			})

			for id, state := range r.Table().Snapshot() {
				fmt.Printf("пир %s: pos=(%.1f, %.1f, %.1f) heading=%.2f speed=%.1f\n",
					id, state.Position.X, state.Position.Y, state.Position.Z,
					state.TargetHeading, state.Speed)
			}
		}
	}
}
