package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expromedia/Marx/internal/auth"
	"github.com/expromedia/Marx/internal/automation"
	"github.com/expromedia/Marx/internal/challenge"
	"github.com/expromedia/Marx/internal/config"
	"github.com/expromedia/Marx/internal/db"
	"github.com/expromedia/Marx/internal/domain/user"
	httpx "github.com/expromedia/Marx/internal/http"
	"github.com/expromedia/Marx/internal/http/middlewares"
	"github.com/expromedia/Marx/internal/jobs"
	"github.com/expromedia/Marx/internal/observability"
	"github.com/expromedia/Marx/internal/portal"
	"github.com/expromedia/Marx/internal/redisclient"
	"github.com/expromedia/Marx/internal/repo/memory"
	"github.com/expromedia/Marx/internal/repo/postgres"
	redisrepo "github.com/expromedia/Marx/internal/repo/redis"
	"github.com/expromedia/Marx/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type storage interface {
	session.Storage
	Ping(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	// Load the config set up
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, cfg.OTel.ServiceName)

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: cfg.OTel.ServiceName,
		Endpoint:    cfg.OTel.Endpoint,
		Env:         cfg.Env,
		SampleRatio: cfg.OTel.SampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	backend, closeBackend, err := openStorage(ctx, cfg, prom)
	if err != nil {
		log.Error("storage init failed", "backend", cfg.StorageBackend, "err", err)
		os.Exit(1)
	}
	defer closeBackend()

	store := session.NewStore(backend, cfg.StorageNamespace, log)

	validator, err := buildValidator(cfg)
	if err != nil {
		log.Error("credential setup failed", "err", err)
		os.Exit(1)
	}

	issuer := challenge.NewIssuer(challenge.NewGenerator(nil), cfg.Sweep.ChallengeTTL)
	jwtManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL())

	choreo := portal.New(store, portal.Timing{
		TickInterval: cfg.Choreography.Tick(),
		CommitDelay:  cfg.Choreography.CommitDelay(),
		LogoutDelay:  cfg.Choreography.LogoutDelay(),
	}, rand.New(rand.NewSource(time.Now().UnixNano())), log)

	unsubscribe := choreo.Subscribe(episodeMetrics(prom))
	defer unsubscribe()

	feedback := memory.NewFeedbackRepo()
	choreo.OnForget(feedback.Forget)

	var gen automation.Generator = automation.Unconfigured{}
	gemini, err := automation.NewGeminiGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	switch {
	case err == nil:
		gen = gemini
	case errors.Is(err, automation.ErrNotConfigured):
		log.Warn("API_KEY not set, AI workflows will report a configuration error")
	default:
		log.Error("genai client init failed", "err", err)
	}

	workflows := automation.NewService(automation.NewProtectedGenerator(gen, automation.ProtectedGeneratorConfig{
		Timeout:          cfg.GenAI.Timeout,
		FailureThreshold: cfg.GenAI.FailureThreshold,
		Cooldown:         cfg.GenAI.Cooldown,
		HalfOpenMaxCalls: 1,
	}), prom, log)

	loginLimiter := middlewares.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	sweeper := jobs.NewScheduler(cfg.Sweep.Schedule, prom, log,
		jobs.Task{Name: "challenges", Run: issuer.Sweep},
		jobs.Task{Name: "clients", Run: func() int { return choreo.SweepIdle(cfg.Sweep.ClientIdleTTL) }},
		jobs.Task{Name: "rate_limiter", Run: loginLimiter.Sweep},
	)
	if err := sweeper.Start(); err != nil {
		log.Error("sweeper start failed", "schedule", cfg.Sweep.Schedule, "err", err)
		os.Exit(1)
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Env:          cfg.Env,
		ServiceName:  cfg.OTel.ServiceName,
		CORSOrigins:  cfg.CORSOrigins,
		SecureCookie: cfg.Env != "dev",
		Log:          log,
		Prom:         prom,
		Gatherer:     reg,
		Ping:         backend.Ping,
		Issuer:       issuer,
		Validator:    validator,
		Sessions:     choreo,
		Tokens:       jwtManager,
		Themes:       store,
		Feedback:     feedback,
		Workflows:    workflows,
		LoginLimiter: loginLimiter,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// session streams and workflow runs outlive a short write timeout
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageBackend)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		// in-flight episodes are abandoned; a half-run login never commits
		choreo.Close()

		if err := sweeper.Stop(ctx); err != nil {
			log.Error("sweeper stop failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStorage builds the key-value backend named by STORAGE_BACKEND.
func openStorage(ctx context.Context, cfg config.Config, prom *observability.Prom) (storage, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		rdb, err := redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewStorageRepo(rdb, cfg.StorageNamespace+":storage:", cfg.StorageTTL), func() { _ = rdb.Close() }, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DB.URL(), cfg.DB.MaxConns)
		if err != nil {
			return nil, nil, err
		}

		repo := postgres.NewStorageRepo(pool, prom.ObserveDB)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		return memory.NewStorageRepo(), func() {}, nil
	}
}

func buildValidator(cfg config.Config) (*auth.Validator, error) {
	c := cfg.Credentials

	admin, err := auth.NewCredential(user.RoleAdmin, c.AdminIdentity, c.AdminSecret, c.AdminName, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	staff, err := auth.NewCredential(user.RoleStaff, c.StaffIdentity, c.StaffSecret, c.StaffName, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	return auth.NewValidator(admin, staff), nil
}

// episodeMetrics feeds choreography events into the episode gauges and
// histograms.
func episodeMetrics(prom *observability.Prom) portal.Observer {
	return func(ev portal.Event) {
		switch ev.Kind {
		case portal.EventLoginStarted:
			prom.EpisodeStarted("login")
		case portal.EventLogoutStarted:
			prom.EpisodeStarted("logout")
		case portal.EventLoginCommitted:
			prom.EpisodeEnded("login", "committed", ev.Elapsed)
		case portal.EventLogoutCompleted:
			prom.EpisodeEnded("logout", "completed", ev.Elapsed)
		case portal.EventEpisodeFailed:
			kind := "login"
			if ev.Snapshot.Phase == portal.PhaseLoggedIn {
				kind = "logout"
			}
			prom.EpisodeEnded(kind, "failed", ev.Elapsed)
		}
	}
}
