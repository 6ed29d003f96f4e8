package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/domain"
	"timed-exam-service/internal/infra/postgres"
	pgmigrations "timed-exam-service/internal/infra/postgres/migrations"
	infraredis "timed-exam-service/internal/infra/redis"
)

type allowAll struct{}

func (allowAll) Verify(domain.Role, string) bool { return true }

func TestOfficialExamEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewBankLoader(pool)
	inserted, err := loader.EnsureBank(ctx, sampleBank())
	if err != nil || !inserted {
		t.Fatalf("ensure bank: inserted=%v err=%v", inserted, err)
	}
	// A second bootstrap leaves the stored bank alone.
	other := sampleBank()
	other.Questions = other.Questions[:2]
	inserted, err = loader.EnsureBank(ctx, other)
	if err != nil || inserted {
		t.Fatalf("second ensure: inserted=%v err=%v", inserted, err)
	}
	storedBank, err := loader.LoadBank(ctx, "bank-1")
	if err != nil || len(storedBank.Questions) != 4 {
		t.Fatalf("stored bank changed: %d questions err=%v", len(storedBank.Questions), err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	results := postgres.NewResultsStore(pool)
	service := app.NewExamService(app.Dependencies{
		Sessions: infraredis.NewSessionStore(redisClient, 5*time.Minute),
		Banks:    infraredis.NewBankRepository(redisClient, loader, 5*time.Minute),
		Results:  results,
		Attempts: postgres.NewAttemptRegistry(pool),
		Verifier: allowAll{},
	}, app.Settings{BankID: "bank-1"}, zerolog.Nop(),
		app.WithTicker(func() (<-chan time.Time, func()) { return make(chan time.Time), func() {} }),
	)
	defer service.Shutdown()

	user := domain.User{FullName: "Ana Ruiz", CollegiateNumber: "12345"}
	session, err := service.Start(ctx, app.StartRequest{User: user, QuizType: domain.QuizTypeOfficial})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		session.GoTo(i)
		if err := session.SelectOption("A"); err != nil {
			t.Fatalf("select: %v", err)
		}
	}

	outcome, err := service.Finish(session.ID())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if outcome.Score != 75 {
		t.Fatalf("expected score 75, got %d", outcome.Score)
	}

	stored, err := results.ListAll(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(stored) != 1 || stored[0].Score != 75 || stored[0].Type != domain.QuizTypeOfficial {
		t.Fatalf("unexpected stored results %+v", stored)
	}

	_, err = service.Start(ctx, app.StartRequest{User: user, QuizType: domain.QuizTypeOfficial})
	if !errors.Is(err, domain.ErrAttemptTaken) {
		t.Fatalf("expected ErrAttemptTaken on retake, got %v", err)
	}

	if err := service.ClearResults(ctx, "any"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	retake, err := service.Start(ctx, app.StartRequest{User: user, QuizType: domain.QuizTypeOfficial})
	if err != nil {
		t.Fatalf("expected retake allowed after clear, got %v", err)
	}
	service.Release(retake.ID())
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "exam", "POSTGRES_PASSWORD": "exampass", "POSTGRES_DB": "examdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://exam:exampass@%s:%s/examdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

// sampleBank answers every question with "A".
func sampleBank() domain.Bank {
	questions := make([]domain.Question, 4)
	for i := range questions {
		questions[i] = domain.Question{
			ID:              i + 1,
			Text:            fmt.Sprintf("question %d", i+1),
			Options:         []domain.Option{{ID: "A", Text: "right"}, {ID: "B", Text: "wrong"}},
			CorrectOptionID: "A",
		}
	}
	return domain.Bank{ID: "bank-1", Questions: questions}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
