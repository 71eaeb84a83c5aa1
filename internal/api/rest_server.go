// Package api поднимает REST-интерфейс сервера: управление сессией,
// состояние HUD, мир для рендера и рекорды.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/arcade-server/internal/middleware"
	"github.com/annel0/arcade-server/internal/score"
	"github.com/annel0/arcade-server/internal/session"
	"github.com/annel0/arcade-server/internal/sim"
	"github.com/annel0/arcade-server/internal/world"
)

// RestServer представляет REST API сервер
type RestServer struct {
	router    *gin.Engine
	session   *session.Session
	scores    score.Repo
	generator *world.Generator
	port      string
	metrics   *ServerMetrics
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port      string // порт для запуска сервера, например ":8090"
	Session   *session.Session
	Scores    score.Repo
	Generator *world.Generator
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8090"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("arcade_api"))

	promMw := middleware.NewPrometheusMiddleware("arcade_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:    router,
		session:   config.Session,
		scores:    config.Scores,
		generator: config.Generator,
		port:      config.Port,
		metrics:   NewServerMetrics(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Презентационный слой живёт на другом origin
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/status", rs.handleStatus)
		api.GET("/hud", rs.handleHUD)
		api.GET("/world", rs.handleWorld)
		api.GET("/highscore", rs.handleHighScore)

		api.POST("/session/start", rs.handleSessionStart)
		api.POST("/input", rs.handleInput)
		api.POST("/camera", rs.handleCamera)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// handleHealth обрабатывает health check
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleStatus возвращает сводку: системные метрики процесса и снимок сессии
func (rs *RestServer) handleStatus(c *gin.Context) {
	status := make(map[string]interface{})

	cpuPercent, _ := rs.metrics.GetCPUUsage()
	status["server"] = map[string]interface{}{
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", rs.metrics.GetMemoryUsage()),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"server_time": time.Now().Unix(),
	}
	status["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	if rs.session != nil {
		hud := rs.session.HUD()
		status["session"] = map[string]interface{}{
			"id":      hud.SessionID,
			"variant": hud.Variant,
			"phase":   hud.Phase,
			"score":   hud.Score,
			"relay":   hud.Relay,
			"peers":   len(hud.Peers),
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статус получен",
		Data:    status,
	})
}

// handleHUD возвращает полный снимок HUD для презентационного слоя
func (rs *RestServer) handleHUD(c *gin.Context) {
	if rs.session == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Сессия не запущена",
		})
		return
	}
	c.JSON(http.StatusOK, rs.session.HUD())
}

// handleWorld отдаёт сгенерированный мир: сид и список объектов.
// Рендер запрашивает его один раз при загрузке.
func (rs *RestServer) handleWorld(c *gin.Context) {
	if rs.generator == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Мир не сгенерирован",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seed":     rs.generator.Seed(),
		"entities": rs.generator.Entities(),
	})
}

// handleHighScore возвращает рекорд варианта (?variant=, по умолчанию текущий)
func (rs *RestServer) handleHighScore(c *gin.Context) {
	variant := c.Query("variant")
	if variant == "" && rs.session != nil {
		variant = rs.session.HUD().Variant
	}

	best, found, err := rs.scores.Best(c.Request.Context(), variant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка загрузки рекорда",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Рекорд получен",
		Data: gin.H{
			"variant":    variant,
			"high_score": best,
			"has_record": found,
		},
	})
}

// handleSessionStart запускает или перезапускает игровую сессию
func (rs *RestServer) handleSessionStart(c *gin.Context) {
	if rs.session == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Сессия не запущена",
		})
		return
	}

	rs.session.Start(c.Request.Context())
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Сессия стартовала",
		Data:    gin.H{"session_id": rs.session.ID()},
	})
}

// InputRequest представляет изменение состояния действия игрока
type InputRequest struct {
	Action  string `json:"action" binding:"required"`
	Pressed bool   `json:"pressed"`
}

// handleInput применяет ввод игрока к симуляции
func (rs *RestServer) handleInput(c *gin.Context) {
	if rs.session == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Сессия не запущена",
		})
		return
	}

	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	if err := rs.session.Input(req.Action, req.Pressed); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Ввод применён"})
}

// CameraRequest представляет переключение режима камеры
type CameraRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// handleCamera переключает режим камеры
func (rs *RestServer) handleCamera(c *gin.Context) {
	if rs.session == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Сессия не запущена",
		})
		return
	}

	var req CameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	mode, ok := sim.ParseCameraMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Неизвестный режим камеры: %q", req.Mode),
		})
		return
	}

	rs.session.SetCameraMode(mode)
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Режим камеры переключён"})
}

// Start запускает REST сервер (блокирующий вызов)
func (rs *RestServer) Start() error {
	return rs.router.Run(rs.port)
}

// Router возвращает router для тестов
func (rs *RestServer) Router() *gin.Engine {
	return rs.router
}
