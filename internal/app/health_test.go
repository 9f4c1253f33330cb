package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthMonitorReportsFailingComponent(t *testing.T) {
	var failing error
	monitor := NewHealthMonitor("json", map[string]Pinger{
		"reservations": pingerFunc(func(context.Context) error { return nil }),
		"fixed_slots":  pingerFunc(func(context.Context) error { return failing }),
	}, time.Hour, zap.NewNop())

	snapshot := monitor.Check(context.Background())
	assert.Equal(t, HealthStatusOK, snapshot.Status)
	require.Len(t, snapshot.Components, 2)
	assert.Equal(t, "fixed_slots", snapshot.Components[0].Name)

	failing = errors.New("file missing")
	monitor.Check(context.Background())

	snapshot = monitor.Snapshot()
	assert.Equal(t, HealthStatusDegraded, snapshot.Status)
	assert.Equal(t, "json", snapshot.Backend)
	assert.False(t, snapshot.Components[0].OK)
	assert.Equal(t, "file missing", snapshot.Components[0].Error)
	assert.True(t, snapshot.Components[1].OK)
}

func TestHealthMonitorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 16)
	monitor := NewHealthMonitor("json", map[string]Pinger{
		"reservations": pingerFunc(func(context.Context) error {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil
		}),
	}, 10*time.Millisecond, zap.NewNop())

	monitor.Start(ctx)
	<-calls
	cancel()
	monitor.Stop()
	monitor.Stop()

	assert.Equal(t, HealthStatusOK, monitor.Snapshot().Status)
}
