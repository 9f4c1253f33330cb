package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_planner/internal/config"
	"github.com/Freeeeeet/slot_planner/internal/repository"
	"github.com/Freeeeeet/slot_planner/internal/repository/jsonfile"
	"github.com/Freeeeeet/slot_planner/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage хранилища выбранного бэкенда
type Storage struct {
	Backend      string
	Reservations repository.ReservationRepository
	FixedSlots   repository.FixedSlotRepository
	Pool         *pgxpool.Pool // nil для json
}

// Pingers хранилища для монитора здоровья
func (s *Storage) Pingers() map[string]Pinger {
	return map[string]Pinger{
		"reservations": s.Reservations,
		"fixed_slots":  s.FixedSlots,
	}
}

// Close освобождает пул соединений, если он есть
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStorage открывает хранилища по STORAGE_BACKEND. Для postgres при MIGRATIONS_AUTO применяет миграции.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendJSON:
		reservations, err := jsonfile.NewReservationStore(cfg.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open reservations file: %w", err)
		}
		fixedSlots, err := jsonfile.NewFixedSlotStore(cfg.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open fixed slots file: %w", err)
		}

		logger.Info("Using JSON file storage",
			zap.String("reservations", reservations.Path()),
			zap.String("fixed_slots", fixedSlots.Path()))

		return &Storage{
			Backend:      cfg.StorageBackend,
			Reservations: reservations,
			FixedSlots:   fixedSlots,
		}, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}

		if cfg.MigrationsAuto {
			if err := migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}

		logger.Info("Using PostgreSQL storage")

		return &Storage{
			Backend:      cfg.StorageBackend,
			Reservations: postgres.NewReservationRepository(pool, logger),
			FixedSlots:   postgres.NewFixedSlotRepository(pool, logger),
			Pool:         pool,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := NewMigrator(pool, postgres.Migrations, postgres.MigrationsDir, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}
