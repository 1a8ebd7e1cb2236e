package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/perplext/cipherhoneypot/src/api"
	"github.com/perplext/cipherhoneypot/src/audit"
	"github.com/perplext/cipherhoneypot/src/callback"
	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/engagement"
	"github.com/perplext/cipherhoneypot/src/events"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/monitoring"
	"github.com/perplext/cipherhoneypot/src/notification"
	"github.com/perplext/cipherhoneypot/src/orchestrator"
	"github.com/perplext/cipherhoneypot/src/persona"
	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/perplext/cipherhoneypot/src/session"
)

var (
	serveUseRedis bool
	serveAddr     string
	serveAuditLog string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the honeypot engagement API server",
	Long: `serve wires the detection engine, persona-driven agent
orchestrator, and profile aggregator into a running HTTP/WebSocket
server, and blocks until it receives SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveUseRedis, "redis", false, "use Redis for session storage and the event bus instead of in-process memory")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "override api.listen_addr from config")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "append a tamper-evident audit trail of every engagement event to this file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		sessions session.Store
		bus      events.Bus
	)

	if serveUseRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		sessions = session.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.SessionTTL(), logger)
		bus = events.NewRedisBus(client, logger)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL())
		bus = events.NewMemoryBus(logger)
	}

	detector := detection.NewEngine(nil)
	personas := persona.NewEngine(cfg.Persona.Dir)

	var generator llm.Generator = llm.MockGenerator{}
	generator = llm.NewUsageTracker(generator)
	generator = llm.NewCircuitBreaker(generator, 5, 30*time.Second)
	generator = llm.NewRateLimiter(generator, 2, 4)

	orch := orchestrator.New(personas, generator, cfg.Agent.MaxRetries, cfg.Agent.TemperatureSequence, cfg.Agent.MaxTurnsRetainedInMemory, cfg.GenerationTimeout(), logger)

	var deadLetter callback.DeadLetterSink
	if serveUseRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		deadLetter = callback.NewRedisDeadLetter(client, cfg.Redis.KeyPrefix)
	}
	dispatcher := callback.New(
		cfg.Callback.URL,
		cfg.Callback.SigningSecret,
		cfg.Callback.MaxRetries,
		time.Duration(cfg.Callback.BackoffBaseSeconds)*time.Second,
		cfg.CallbackTimeout(),
		deadLetter,
		logger,
	)

	metrics := monitoring.New()
	metrics.Subscribe(bus)
	dispatcher.OnResult(metrics.RecordCallback)

	notifier := notification.NewNotifier(notification.NewConsoleChannel(), detection.ScamThreshold+0.35)
	notifier.Subscribe(bus)

	if serveAuditLog != "" {
		logFile, err := os.OpenFile(serveAuditLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer logFile.Close()
		trail := audit.New(logFile, []byte(cfg.Callback.SigningSecret))
		trail.Subscribe(bus)
	}

	controller := engagement.New(sessions, detector, orch, bus, dispatcher, cfg, logger)

	var profiles profile.Store
	if cfg.Profile.DatabaseDSN != "" {
		store, err := profile.Open(cfg.Profile.DatabaseDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("profile store unavailable, profile endpoints will 404")
		} else {
			profiles = store
			aggregator := profile.NewAggregator(store, time.Duration(cfg.Profile.NewEngagementGapSeconds)*time.Second, logger)
			aggregator.Subscribe(bus)
		}
	}

	server := api.NewServer(controller, sessions, profiles)
	addr := cfg.API.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	router := api.NewRouter(server, bus, api.RouterConfig{
		APIKeyHash:     cfg.API.APIKeyHash,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	})
	router.Handle("/metrics", metrics)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting honeypot api server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
