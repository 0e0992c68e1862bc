package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sohaum/bazar/internal/catalog"
	"github.com/sohaum/bazar/internal/config"
	"github.com/sohaum/bazar/internal/httpserver"
	"github.com/sohaum/bazar/internal/httpserver/deps"
	"github.com/sohaum/bazar/internal/identity"
	"github.com/sohaum/bazar/internal/ingest"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/redis"
	"github.com/sohaum/bazar/internal/sources/seed"
	"github.com/sohaum/bazar/internal/store"
	"github.com/sohaum/bazar/internal/store/rediskv"
	"github.com/sohaum/bazar/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	repo        *catalog.Repository
	identity    *identity.Provider
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Pick the store: Redis when configured, otherwise the in-process
	// fallback (fine for demos, loses everything on restart).
	var (
		kv          store.KV
		redisClient *goredis.Client
	)
	if cfg.RedisAddr == "" {
		loggerClient.Warn("no redis address configured, using in-process store")
		kv = store.NewMemory()
	} else {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		kv = rediskv.New(client)
	}

	repo := catalog.NewRepository(kv, loggerClient)
	pins := catalog.NewPins(kv, loggerClient)
	idp := identity.NewProvider(kv, loggerClient)
	pipeline := ingest.NewPipeline(repo, kv, loggerClient)

	if cfg.SeedFile != "" {
		if err := seedCatalog(context.Background(), cfg.SeedFile, repo, idp, loggerClient); err != nil {
			loggerClient.Warn("seeding failed, starting with whatever the store holds",
				logger.Error(err))
		}
	}

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,
		Repo:      repo,
		Pins:      pins,
		Identity:  idp,
		Pipeline:  pipeline,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		repo:        repo,
		identity:    idp,
	}
}

// seedCatalog provisions the demo accounts and, when the collection is
// empty, the demo listings. Existing data is never overwritten.
func seedCatalog(ctx context.Context, path string, repo *catalog.Repository, idp *identity.Provider, log logger.Logger) error {
	cfg, err := seed.NewLoader(path).Load()
	if err != nil {
		return err
	}

	mapper := seed.NewMapper()
	users, err := mapper.MapUsers(cfg)
	if err != nil {
		return err
	}
	if err := idp.EnsureUsers(ctx, users); err != nil {
		return err
	}

	if existing := repo.List(ctx); len(existing) > 0 {
		log.Debug("catalog not empty, skipping demo listings",
			logger.Int("listings", len(existing)))
		return nil
	}

	listings := mapper.MapListings(cfg, time.Now())
	for _, l := range listings {
		if _, err := repo.Create(ctx, l); err != nil {
			return fmt.Errorf("failed to seed listing %q: %w", l.Title, err)
		}
	}
	log.Info("demo catalog seeded",
		logger.Int("users", len(users)),
		logger.Int("listings", len(listings)))
	return nil
}

func (a *App) Run() error {
	a.logger.Infof("Starting bazar %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bazar %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Errorf("HTTP server shutdown error: %v", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Errorf("Redis close error: %v", err)
		}
	}

	a.logger.Info("Shutdown complete")
	return nil
}
