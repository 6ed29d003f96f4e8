package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"timed-exam-service/internal/config"
	"timed-exam-service/internal/infra/postgres"
	pgmigrations "timed-exam-service/internal/infra/postgres/migrations"
	infraredis "timed-exam-service/internal/infra/redis"
	"timed-exam-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedBank bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			return runMigrationsWithConfig(cmd.Context(), cfg, log, seedBank)
		},
	}
	cmd.Flags().BoolVar(&seedBank, "seed-bank", false, "upsert the built-in question bank under bank.id")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log zerolog.Logger, seedBank bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations")
	} else {
		log.Info().Str("group", group.String()).Msg("migrations applied")
	}

	if !seedBank {
		return nil
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := postgres.NewBankLoader(pool).SaveBank(ctx, defaultBank(cfg.Bank.ID)); err != nil {
		return err
	}
	log.Info().Str("bank_id", cfg.Bank.ID).Msg("question bank seeded")

	if cfg.Redis.Addr == "" {
		return nil
	}
	if err := dropCachedBank(ctx, cfg, cfg.Bank.ID); err != nil {
		return err
	}
	log.Info().Str("bank_id", cfg.Bank.ID).Msg("cached question bank invalidated")
	return nil
}

// dropCachedBank removes the Redis copy of a bank so running servers reload
// the reseeded version on their next read.
func dropCachedBank(ctx context.Context, cfg config.Config, bankID string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	if err := infraredis.NewBankRepository(client, nil, 0).Invalidate(ctx, bankID); err != nil {
		return fmt.Errorf("invalidate cached bank: %w", err)
	}
	return nil
}
