package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"

	DefaultHealthInterval = 30 * time.Second
	pingTimeout           = 5 * time.Second
)

// Pinger хранилище, доступность которого можно проверить
type Pinger interface {
	Ping(ctx context.Context) error
}

// ComponentHealth результат последней проверки одного хранилища
type ComponentHealth struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HealthSnapshot состояние хранилищ на момент последней проверки
type HealthSnapshot struct {
	Status     string            `json:"status"`
	Backend    string            `json:"backend"`
	CheckedAt  time.Time         `json:"checked_at"`
	Components []ComponentHealth `json:"components"`
}

// HealthMonitor периодически пингует хранилища и хранит последний снимок
type HealthMonitor struct {
	backend  string
	pingers  map[string]Pinger
	interval time.Duration
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot HealthSnapshot

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewHealthMonitor(backend string, pingers map[string]Pinger, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &HealthMonitor{
		backend:  backend,
		pingers:  pingers,
		interval: interval,
		logger:   logger,
		snapshot: HealthSnapshot{Status: HealthStatusOK, Backend: backend},
		stopChan: make(chan struct{}),
	}
}

// Start делает первую проверку сразу и запускает фоновый цикл
func (m *HealthMonitor) Start(ctx context.Context) {
	m.logger.Info("Starting storage health monitor", zap.Duration("interval", m.interval))

	m.Check(ctx)
	go m.run(ctx)
}

// Stop останавливает фоновый цикл
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping storage health monitor")
		close(m.stopChan)
	})
}

func (m *HealthMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-m.stopChan:
			return
		case <-ctx.Done():
			m.logger.Info("Storage health monitor cancelled")
			return
		}
	}
}

// Check пингует все хранилища и обновляет снимок
func (m *HealthMonitor) Check(ctx context.Context) HealthSnapshot {
	names := make([]string, 0, len(m.pingers))
	for name := range m.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	snapshot := HealthSnapshot{
		Status:     HealthStatusOK,
		Backend:    m.backend,
		CheckedAt:  time.Now().UTC(),
		Components: make([]ComponentHealth, 0, len(names)),
	}

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := m.pingers[name].Ping(pingCtx)
		cancel()

		component := ComponentHealth{Name: name, OK: err == nil}
		if err != nil {
			component.Error = err.Error()
			snapshot.Status = HealthStatusDegraded
			m.logger.Warn("Storage ping failed", zap.String("component", name), zap.Error(err))
		}
		snapshot.Components = append(snapshot.Components, component)
	}

	m.mu.Lock()
	previous := m.snapshot.Status
	m.snapshot = snapshot
	m.mu.Unlock()

	if previous != snapshot.Status {
		m.logger.Info("Storage health changed",
			zap.String("from", previous),
			zap.String("to", snapshot.Status))
	}

	return snapshot
}

// Snapshot последний результат проверки
func (m *HealthMonitor) Snapshot() HealthSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := m.snapshot
	snapshot.Components = append([]ComponentHealth(nil), m.snapshot.Components...)
	return snapshot
}
