// Команда week_board рисует PNG-доску ISO-недели из настроенного хранилища в файл.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/app"
	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/config"
	"github.com/Freeeeeet/slot_planner/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	currentYear, currentWeek := time.Now().ISOWeek()
	year := flag.Int("year", currentYear, "ISO year")
	week := flag.Int("week", currentWeek, "ISO week number")
	output := flag.String("out", "week_board.png", "output PNG file")
	flag.Parse()

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	boards := service.NewBoardService(storage.Reservations, storage.FixedSlots, calendar.SystemClock{}, cfg.BoardCacheTTL, logger)

	data, err := boards.WeekImage(ctx, *year, *week)
	if err != nil {
		logger.Fatal("Failed to render week board", zap.Error(err))
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Fatal("Failed to write week board", zap.Error(err))
	}

	period := calendar.WeekRange(*year, *week)
	logger.Info("Week board written",
		zap.String("file", *output),
		zap.String("from", period.Start.String()),
		zap.String("to", period.End.String()),
		zap.Int("bytes", len(data)))
}
