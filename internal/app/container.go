package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ats-sync/internal/config"
	"ats-sync/internal/database"
	dbpostgres "ats-sync/internal/database/postgres"
	"ats-sync/internal/events"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/infrastructure/cache"
	"ats-sync/internal/infrastructure/queue"
	"ats-sync/internal/pkg/flags"
	"ats-sync/internal/pkg/jwt"
	"ats-sync/internal/pkg/logger"
	"ats-sync/internal/repository"
	"ats-sync/internal/scheduler"
	"ats-sync/internal/usecase/atssync"
	ucauth "ats-sync/internal/usecase/auth"
	uccandidate "ats-sync/internal/usecase/candidate"
	ucjob "ats-sync/internal/usecase/job"
	"ats-sync/internal/ws"
)

// Container holds every long-lived dependency of the service. The HTTP
// server and the CLI both build one.
type Container struct {
	Config config.Config
	Logger *zap.SugaredLogger
	DB     database.DB
	Redis  *cache.Redis
	Flags  *flags.Switch
	JWT    *jwt.HMACService
	Hub    *ws.Hub

	Jobs       repository.JobRepository
	Candidates repository.CandidateRepository
	Employers  repository.EmployerRepository
	Runs       repository.SyncRunRepository

	JobSync       *atssync.JobSync
	CandidateSync *atssync.CandidateSync
	Reconciler    *atssync.Reconciler
	Scheduler     *scheduler.Scheduler

	JobService       *ucjob.Service
	CandidateService *uccandidate.Service
	AuthService      *ucauth.Service

	Publisher  events.Publisher
	consumer   *atssync.Consumer
	dispatcher *events.Dispatcher
	rabbit     *queue.RabbitMQ
}

func NewContainer(cfg config.Config, log *zap.SugaredLogger) (*Container, error) {
	log = logger.OrNop(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  cache.NewRedis(cfg.Redis, log.Named("redis")),
		Flags:  flags.NewSwitch(cfg.ATS.Enabled, cfg.ATS.ScheduledEnabled),
		JWT:    jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
		Hub:    ws.NewHub(log.Named("ws")),

		Jobs:       repository.NewPostgresJobRepository(db),
		Candidates: repository.NewPostgresCandidateRepository(db),
		Employers:  repository.NewPostgresEmployerRepository(db),
		Runs:       repository.NewPostgresSyncRunRepository(db),
	}

	if err := c.wireSync(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.wireEvents()

	c.JobService = ucjob.NewService(c.Jobs, c.Employers, c.Publisher, log.Named("jobs"))
	c.CandidateService = uccandidate.NewService(c.Candidates, c.CandidateSync, c.Publisher, log.Named("candidates"))
	c.AuthService = ucauth.NewService(cfg.Admin, c.JWT)

	return c, nil
}

func (c *Container) wireSync() error {
	cfg := c.Config.ATS
	atsLog := c.Logger.Named("ats")

	tokens := ats.NewCachedTokenProvider(cfg.BaseURL, ats.Credentials{
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
	}, cfg.TokenTTL, nil, atsLog)

	client, err := ats.NewClient(cfg.BaseURL, tokens, c.Flags, ats.Options{
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		Logger:         atsLog,
	})
	if err != nil {
		return fmt.Errorf("ats client: %w", err)
	}
	if cfg.Enabled && cfg.BaseURL == "" {
		atsLog.Warnw("ats integration enabled without ATS_BASE_URL; every sync will fail with a configuration error")
	}

	companies := ats.NewCompanyResolver(client, cache.NewCompanyCache(c.Redis, cache.DefaultCompanyTTL), atsLog)

	c.JobSync = atssync.NewJobSync(client, companies, c.Jobs, c.Employers, c.Logger.Named("sync.jobs"))
	c.CandidateSync = atssync.NewCandidateSync(client, c.Candidates, atssync.NewHTTPResumeFetcher(cfg.UploadTimeout), c.Logger.Named("sync.candidates"))

	c.Reconciler = atssync.NewReconciler(atssync.ReconcilerDeps{
		Jobs:       c.JobSync,
		Candidates: c.CandidateSync,
		JobRepo:    c.Jobs,
		CandRepo:   c.Candidates,
		Employers:  c.Employers,
		Runs:       c.Runs,
		Lock:       cache.NewRunLock(c.Redis, cfg.RunLockTTL),
		Notifier:   c.Hub,
		Flags:      c.Flags,
		Logger:     c.Logger.Named("reconciler"),
	}, atssync.ReconcilerConfig{
		BatchSize:     cfg.BatchSize,
		UpdatedWindow: cfg.UpdatedWindow,
		RatePerSecond: cfg.RatePerSecond,
	})

	c.Scheduler = scheduler.New(c.Reconciler, c.Flags, c.Config.Schedule, c.Logger.Named("scheduler"))
	return nil
}

// wireEvents picks RabbitMQ when configured and reachable, else the
// in-process dispatcher.
func (c *Container) wireEvents() {
	c.consumer = atssync.NewConsumer(c.JobSync, c.CandidateSync, c.Jobs, c.Candidates, c.Logger.Named("sync.events"))

	if c.Config.Queue.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(c.Config.Queue, c.Logger.Named("rabbitmq"))
		if err == nil {
			c.rabbit = rmq
			c.Publisher = rmq
			return
		}
		c.Logger.Warnw("rabbitmq unavailable, using in-process event dispatcher", "error", err)
	}

	c.dispatcher = events.NewDispatcher(c.Config.Queue.Workers, c.Config.Queue.Buffer, c.consumer.Handle, c.Logger.Named("events"))
	c.Publisher = c.dispatcher
}

// StartBackground runs the websocket hub, the event consumer and the cron
// scheduler until ctx is done.
func (c *Container) StartBackground(ctx context.Context) error {
	go c.Hub.Run(ctx)

	if c.rabbit != nil {
		if err := c.rabbit.Consume(ctx, c.consumer.Handle); err != nil {
			return err
		}
	} else {
		c.dispatcher.Start(ctx)
	}

	return c.Scheduler.Start(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.dispatcher != nil {
		c.dispatcher.Close()
	}

	var errs []error
	if c.rabbit != nil {
		errs = append(errs, c.rabbit.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
