// Команда import_json переносит reservations.json и fixed_slots.json (включая
// записи старого недельного формата) в PostgreSQL одной транзакцией.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/slot_planner/internal/app"
	"github.com/Freeeeeet/slot_planner/internal/config"
	"github.com/Freeeeeet/slot_planner/internal/repository/base"
	"github.com/Freeeeeet/slot_planner/internal/repository/jsonfile"
	"github.com/Freeeeeet/slot_planner/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataDir := flag.String("data-dir", cfg.DataDir, "directory with reservations.json and fixed_slots.json")
	dsn := flag.String("dsn", cfg.DBDSN, "PostgreSQL DSN")
	dryRun := flag.Bool("dry-run", false, "read and report without writing")
	flag.Parse()

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dataDir, *dsn, *dryRun, logger); err != nil {
		logger.Error("Import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, dataDir, dsn string, dryRun bool, logger *zap.Logger) error {
	reservationFile, err := jsonfile.NewReservationStore(dataDir, logger)
	if err != nil {
		return err
	}
	fixedSlotFile, err := jsonfile.NewFixedSlotStore(dataDir, logger)
	if err != nil {
		return err
	}

	reservations, err := reservationFile.List(ctx, nil)
	if err != nil {
		return err
	}
	fixedSlots, err := fixedSlotFile.List(ctx)
	if err != nil {
		return err
	}

	logger.Info("JSON data loaded",
		zap.String("data_dir", dataDir),
		zap.Int("reservations", len(reservations)),
		zap.Int("fixed_slots", len(fixedSlots)))

	if dryRun {
		return nil
	}
	if dsn == "" {
		return errors.New("DB_DSN is required but not set")
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, postgres.Migrations, postgres.MigrationsDir, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return err
	}

	reservationRepo := postgres.NewReservationRepository(pool, logger)
	fixedSlotRepo := postgres.NewFixedSlotRepository(pool, logger)

	var created, updated int
	err = base.NewRepository(pool).InTx(ctx, func(q base.Querier) error {
		txReservations := reservationRepo.WithQuerier(q)
		txFixedSlots := fixedSlotRepo.WithQuerier(q)

		for _, r := range reservations {
			isNew, err := txReservations.Upsert(ctx, r)
			if err != nil {
				return err
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}

		for _, s := range fixedSlots {
			isNew, err := txFixedSlots.Upsert(ctx, s)
			if err != nil {
				return err
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Import completed",
		zap.Int("created", created),
		zap.Int("updated", updated))

	return nil
}
