package app

import (
	"context"
	"fmt"
	"time"

	"github.com/suchockipawel/nottodo/internal/config"
	"github.com/suchockipawel/nottodo/internal/mail"
	"github.com/suchockipawel/nottodo/internal/reminder"
	"github.com/suchockipawel/nottodo/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type App struct {
	cfg       config.Config
	logger    zerolog.Logger
	db        *pgxpool.Pool
	redis     *redis.Client
	router    *gin.Engine
	reminders *reminder.Runner
}

func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if err := runMigrations(cfg.PG.DSN, "./migrations"); err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, err
	}

	a.router = newRouter(cfg, logger, a.db, a.redis)
	a.reminders = newReminderRunner(cfg, logger, a.db)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// StartReminders begins the periodic dispatch loop, unless disabled by config.
func (a *App) StartReminders() error {
	if !a.cfg.Reminder.Enabled {
		a.logger.Info().Msg("reminder dispatcher disabled by config")
		return nil
	}
	return a.reminders.Start()
}

func (a *App) Close(ctx context.Context) error {
	if a.cfg.Reminder.Enabled {
		if err := a.reminders.Stop(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("reminder runner did not stop cleanly")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, logger zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, logger, db, rdb)
	return r
}

func newReminderRunner(cfg config.Config, logger zerolog.Logger, db *pgxpool.Pool) *reminder.Runner {
	var sender mail.Sender
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
	} else {
		sender = mail.LogSender{Logger: logger.With().Str("component", "mail").Logger()}
	}

	dispatcher := reminder.NewDispatcher(
		repo.NewPGNotToDoRepo(db),
		repo.NewPGUserRepo(db),
		repo.NewPGEmailLogRepo(db),
		sender,
		cfg.SMTP.From,
		logger.With().Str("component", "reminder").Logger(),
	)
	return reminder.NewRunner(dispatcher, cfg.Reminder.Interval.Duration(),
		logger.With().Str("component", "reminder").Logger())
}
