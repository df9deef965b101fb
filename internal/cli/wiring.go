package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"quiz-service/internal/app"
	"quiz-service/internal/config"
	"quiz-service/internal/infra/memory"
	"quiz-service/internal/infra/postgres"
	rediscache "quiz-service/internal/infra/redis"
	"quiz-service/internal/logger"
)

const defaultAnswerKeyTTL = 10 * time.Minute

// repositories is the persistence half of the application; postgres when a
// URL is configured, otherwise one in-process store.
type repositories interface {
	app.QuizRepository
	app.QuestionRepository
	app.OptionRepository
	app.AttemptRepository
	app.StudentRepository
}

type services struct {
	repo      repositories
	quizzes   *app.QuizService
	questions *app.QuestionService
	options   *app.OptionService
	attempts  *app.AttemptService
	students  *app.StudentService
	closers   []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode)
}

func openDB(ctx context.Context, cfg config.Config, log *logger.Logger) (*bun.DB, error) {
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	db := postgres.OpenDB(cfg.Postgres.URL)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Debug("postgres connected")
	return db, nil
}

func migrateDB(ctx context.Context, db *bun.DB, log *logger.Logger) error {
	group, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrations applied", "group", group.String())
	return nil
}

// buildServices wires storage, the answer-key cache and the application
// services from cfg. Migrations run first when postgres is configured.
func buildServices(ctx context.Context, cfg config.Config, log *logger.Logger) (*services, error) {
	svc := &services{}
	var loader app.AnswerKeyLoader

	if cfg.Postgres.URL != "" {
		db, err := openDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = db.Close() })
		if err := migrateDB(ctx, db, log); err != nil {
			svc.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("connect pgx pool: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)
		svc.repo = postgres.NewStore(db)
		loader = postgres.NewAnswerKeyLoader(pool)
	} else {
		store := memory.NewStore()
		svc.repo = store
		loader = store
		log.Warn("postgres url not configured; using in-memory storage")
	}

	ttl := config.TTLDuration(cfg.AnswerKeys.TTL, defaultAnswerKeyTTL)
	var keys app.AnswerKeyRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			svc.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		keys = rediscache.NewAnswerKeyCache(client, loader, ttl)
	} else {
		keys = memory.NewAnswerKeyCache(loader, ttl)
	}

	hasher, err := app.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.quizzes = app.NewQuizService(svc.repo, keys, log)
	svc.questions = app.NewQuestionService(svc.repo, svc.repo, keys, log)
	svc.options = app.NewOptionService(svc.repo, svc.repo, keys, log)
	svc.attempts = app.NewAttemptService(svc.repo, keys, svc.repo, app.NewLeaderboardHub(), log)
	svc.students = app.NewStudentService(svc.repo, hasher, log)
	return svc, nil
}

func seedSampleData(ctx context.Context, svc *services, log *logger.Logger) error {
	seeded, err := app.SeedSampleData(ctx, svc.quizzes, svc.questions, svc.repo)
	if err != nil {
		return fmt.Errorf("seed sample data: %w", err)
	}
	if seeded {
		log.Info("sample quiz created")
	}
	return nil
}
