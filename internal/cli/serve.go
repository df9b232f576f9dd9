package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"webgenie/internal/auth"
	"webgenie/internal/cache"
	"webgenie/internal/config"
	"webgenie/internal/generator"
	"webgenie/internal/logging"
	"webgenie/internal/preview"
	"webgenie/internal/repository"
	"webgenie/internal/repository/mongo"
	"webgenie/internal/repository/sqlite"
	"webgenie/internal/service"
	"webgenie/internal/site"
	"webgenie/internal/transport/rest"
	"webgenie/internal/transport/ws"
	"webgenie/ui"
)

const (
	shutdownTimeout = 15 * time.Second
	evictInterval   = time.Minute
	sweepInterval   = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	Long: `Starts the HTTP server with the editor, the preview sessions and the
JSON API. The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(context.Background())

	return app.run(ctx)
}

// app is the wired server and everything it owns.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	store    repository.Store
	cache    cache.AnalysisCache
	sessions *preview.Manager
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analysisCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		store.Close(ctx)
		return nil, err
	}

	pages, err := site.Load()
	if err != nil {
		store.Close(ctx)
		analysisCache.Close()
		return nil, fmt.Errorf("loading site pages: %w", err)
	}

	hub := ws.NewHub(logger)
	sessions := preview.NewManager(logger, hub.Container, cfg.PreviewIdleTimeout())
	gen := generator.NewClient(logger, cfg.AI)
	if !gen.Enabled() {
		logger.WarnContext(ctx, "GEMINI_API_KEY is not set, site generation is disabled")
	}

	handler, err := rest.NewRouter(&rest.Container{
		Logger:         logger,
		Auth:           auth.NewService(logger, store.Users(), cfg.Auth.JWTSecret, cfg.TokenTTL()),
		Projects:       service.NewProjectService(logger, store.Projects(), analysisCache),
		Templates:      service.NewTemplateService(logger, store.Templates()),
		Generator:      gen,
		Sessions:       sessions,
		WSHub:          hub,
		Pages:          pages,
		UI:             ui.Files,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PreviewOrigin:  cfg.Preview.Origin,
	})
	if err != nil {
		store.Close(ctx)
		analysisCache.Close()
		return nil, fmt.Errorf("building router: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout(),
			WriteTimeout:      cfg.WriteTimeout(),
		},
		store:    store,
		cache:    analysisCache,
		sessions: sessions,
	}, nil
}

// run serves until ctx is done, then drains the server and the sessions.
func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "Server starting...", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.sessions.Run(gctx, evictInterval)
	})

	if mem, ok := a.cache.(*cache.MemoryCache); ok {
		g.Go(func() error {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := mem.Sweep(); n > 0 {
						a.logger.DebugContext(gctx, "Swept expired analyses", slog.Int("count", n))
					}
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.InfoContext(gctx, "Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *app) close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		a.logger.WarnContext(ctx, "Failed to close analysis cache", slog.Any("error", err))
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.WarnContext(ctx, "Failed to close store", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := mongo.Connect(connectCtx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.NewStore(cfg.Storage.SQLiteDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	}
}

// openCache uses redis when configured and falls back to the in-process
// cache otherwise.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.AnalysisCache, error) {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemoryCache(cfg.CacheTTL()), nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	logger.InfoContext(ctx, "Using redis analysis cache")
	return redisCache, nil
}
