package main

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"taskit/internal/config"
	"taskit/internal/repository"
	"taskit/internal/service"
	"taskit/internal/session"
	"taskit/internal/web"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("taskit stopped")
	}
	log.Info("Shutdown complete.")
}

// run wires the server and blocks until ctx is cancelled. Returning instead
// of exiting lets every deferred close run.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return errors.Wrap(err, "db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	log.WithField("driver", cfg.DatabaseDriver).Info("database ready")

	hasher, err := service.NewPasswordHasher(cfg.PasswordHash)
	if err != nil {
		return errors.Wrap(err, "password hasher")
	}
	if cfg.PasswordHash == "sha256" {
		log.Warn("passwords are stored as unsalted sha256 digests; set PASSWORD_HASH=bcrypt for new databases")
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authSvc := service.NewAuthService(userRepo, hasher)
	taskSvc := service.NewTaskService(taskRepo)
	rolloverSvc := service.NewRolloverService(taskRepo)

	secret, err := sessionSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}
	revoked, closeRevoked, err := denylist(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRevoked()
	issuer := session.NewIssuer(secret, cfg.SessionTTL, revoked)

	if cfg.RolloverAt != "" {
		scheduler := service.NewSchedulerService(time.Local, cron.PrintfLogger(log))
		id, err := scheduler.ScheduleDaily(cfg.RolloverAt, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			res, err := rolloverSvc.Rollover(jobCtx)
			if err != nil {
				log.WithError(err).Error("rollover failed")
				return
			}
			log.WithFields(logrus.Fields{"overdue": res.Overdue, "promoted": res.Promoted}).Info("board rolled over")
		})
		if err != nil {
			return errors.Wrap(err, "schedule rollover")
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.WithField("next", scheduler.Next(id)).Info("rollover scheduled")
	}

	handler := web.NewHandler(authSvc, taskSvc, issuer, log)
	router := web.NewRouter(handler, web.Options{AuthRatePerMinute: cfg.AuthRatePerMinute})

	log.WithField("addr", cfg.HTTPAddr).Info("taskit listening")
	return errors.Wrap(web.Serve(ctx, router, cfg.HTTPAddr), "server stopped")
}

// sessionSecret falls back to a per-process random key, which signs every
// user out on restart.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, "session secret")
	}
	return secret, nil
}

// denylist picks where revoked sessions live. The returned func releases the
// redis connection, if one was opened.
func denylist(ctx context.Context, cfg config.Config) (session.Denylist, func(), error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryDenylist(), func() {}, nil
	}
	d, err := session.DialRedisDenylist(ctx, &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", cfg.RedisAddr).Info("session revocations stored in redis")
	return d, func() {
		if err := d.Close(); err != nil {
			log.WithError(err).Warn("close redis")
		}
	}, nil
}
