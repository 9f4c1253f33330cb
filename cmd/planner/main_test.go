package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/app"
	"github.com/Freeeeeet/slot_planner/internal/config"
	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestNewServerServesJSONBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := &config.Config{
		AppPort:           "3000",
		StorageBackend:    config.BackendJSON,
		StorageMode:       model.ModeWeekKeyed,
		ReservationPolicy: model.PolicyUpsert,
		DataDir:           t.TempDir(),
		BoardCacheTTL:     time.Minute,
	}

	storage, err := app.OpenStorage(ctx, cfg, logger)
	require.NoError(t, err)
	defer storage.Close()

	health := app.NewHealthMonitor(storage.Backend, storage.Pingers(), time.Hour, logger)
	health.Check(ctx)

	clock := fixedClock(time.Date(2025, time.October, 15, 9, 0, 0, 0, time.UTC))
	srv := newServer(cfg, storage, clock, health, logger)
	assert.Equal(t, ":3000", srv.Addr)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations",
		bytes.NewBufferString(`{"year":2025,"week":42,"day_of_week":1,"time_slot":"8h","text":"Lab"}`))
	srv.Handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reservations?year=2025&week=42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"year":2025,"week":42,"day_of_week":1,"time_slot":"8h","text":"Lab"}]`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
