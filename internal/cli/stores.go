package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/auth"
	"timed-exam-service/internal/config"
	"timed-exam-service/internal/domain"
	"timed-exam-service/internal/infra/memory"
	"timed-exam-service/internal/infra/postgres"
	infraredis "timed-exam-service/internal/infra/redis"
	"timed-exam-service/internal/infra/sqlite"
)

// backends holds the collaborators selected from config. Results and attempts
// go to Postgres, then Redis, then SQLite, then process memory, whichever is
// configured first.
type backends struct {
	deps   app.Dependencies
	pool   *pgxpool.Pool
	redis  *redis.Client
	sqlite *sqlite.Store
}

func (b *backends) Close() {
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func openBackends(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}

	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)

	var loader memory.BankLoader = memory.NewStaticBankLoader(defaultBank(cfg.Bank.ID))
	if b.pool != nil {
		pgLoader := postgres.NewBankLoader(b.pool)
		seeded, err := pgLoader.EnsureBank(ctx, defaultBank(cfg.Bank.ID))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("bootstrap question bank: %w", err)
		}
		if seeded {
			log.Info().Str("bank_id", cfg.Bank.ID).Msg("built-in question bank inserted")
		}
		loader = pgLoader
	}

	switch {
	case b.redis != nil:
		b.deps.Banks = infraredis.NewBankRepository(b.redis, loader, bankTTL)
		b.deps.Sessions = infraredis.NewSessionStore(b.redis, redisTTL)
	default:
		b.deps.Banks = memory.NewBankRepository(loader, bankTTL)
		b.deps.Sessions = memory.NewSessionStore()
	}

	switch {
	case b.pool != nil:
		b.deps.Results = postgres.NewResultsStore(b.pool)
		b.deps.Attempts = postgres.NewAttemptRegistry(b.pool)
	case b.redis != nil:
		b.deps.Results = infraredis.NewResultsStore(b.redis, log)
		b.deps.Attempts = infraredis.NewAttemptRegistry(b.redis)
	case cfg.SQLite.Path != "":
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.sqlite = store
		b.deps.Results = store.Results()
		b.deps.Attempts = store.Attempts()
	default:
		log.Warn().Msg("no postgres or redis configured, results are kept in memory only")
		b.deps.Results = memory.NewResultsStore()
		b.deps.Attempts = memory.NewAttemptRegistry()
	}

	b.deps.Verifier = auth.NewBcryptVerifier(map[domain.Role]string{
		domain.RoleAdmin:    cfg.Auth.AdminHash,
		domain.RolePractice: cfg.Auth.PracticeHash,
	})
	return b, nil
}
