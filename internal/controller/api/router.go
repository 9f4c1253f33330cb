// Package api HTTP-фасад планировщика поверх сервисов (gin).
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Freeeeeet/slot_planner/internal/app"
	"github.com/Freeeeeet/slot_planner/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthReporter источник последнего снимка состояния хранилищ
type HealthReporter interface {
	Snapshot() app.HealthSnapshot
}

type Handler struct {
	reservations *service.ReservationService
	fixedSlots   *service.FixedSlotService
	boards       *service.BoardService
	health       HealthReporter
	logger       *zap.Logger
}

func NewHandler(
	reservations *service.ReservationService,
	fixedSlots *service.FixedSlotService,
	boards *service.BoardService,
	health HealthReporter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		reservations: reservations,
		fixedSlots:   fixedSlots,
		boards:       boards,
		health:       health,
		logger:       logger,
	}
}

// RouterConfig параметры роутера, не относящиеся к сервисам
type RouterConfig struct {
	StaticDir       string
	RateLimitPerMin int
}

// NewRouter собирает gin.Engine со всеми маршрутами и middleware
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(
		Recovery(h.logger),
		RequestID(),
		AccessLog(h.logger),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
			ExposeHeaders:   []string{RequestIDHeader},
		}),
		RateLimit(cfg.RateLimitPerMin, h.logger),
	)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/reservations", h.ListReservations)
		api.POST("/reservations", h.UpsertReservation)
		api.DELETE("/reservations", h.DeleteReservation)
		api.POST("/reserve", h.UpsertReservation)

		api.GET("/fixed-slots", h.ListFixedSlots)
		api.POST("/fixed-slots", h.UpsertFixedSlot)
		api.DELETE("/fixed-slots", h.DeleteFixedSlot)

		api.GET("/weeks/:year/:week", h.GetWeek)
		api.GET("/weeks/:year/:week/board.png", h.GetWeekBoard)
	}

	r.NoRoute(staticFallback(cfg.StaticDir))

	return r
}

// staticFallback отдаёт фронтенд из dir; неизвестные /api-пути получают JSON 404
func staticFallback(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}

	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

// Health снимок монитора хранилищ; деградация отдаётся как 503
func (h *Handler) Health(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": app.HealthStatusOK})
		return
	}

	snapshot := h.health.Snapshot()
	status := http.StatusOK
	if snapshot.Status != app.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, snapshot)
}

// bindOptionalJSON разбирает тело, если оно есть; пустое тело не ошибка
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
