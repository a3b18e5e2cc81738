package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"creatorscope/internal/logging"
	"creatorscope/internal/store"
	"creatorscope/internal/telemetry"
)

// Store is the read and campaign surface the dashboard needs.
type Store interface {
	ListCreators(ctx context.Context) ([]store.CreatorMetrics, error)
	GetCreator(ctx context.Context, username string) (*store.Creator, error)
	ListPosts(ctx context.Context, username string) ([]store.Post, error)
	InstagramStats(ctx context.Context) (store.InstagramStats, error)
	ListChannels(ctx context.Context) ([]store.ChannelMetrics, error)
	GetChannel(ctx context.Context, channelID string) (*store.Channel, error)
	ListVideos(ctx context.Context, channelID string) ([]store.Video, error)
	YouTubeStats(ctx context.Context) (store.YouTubeStats, error)
	SetCampaignStatus(ctx context.Context, platform store.Platform, creatorID string, status store.CampaignStatus, notes string) (*store.Campaign, error)
	ListCampaigns(ctx context.Context, platform store.Platform) ([]store.Campaign, error)
	CampaignStats(ctx context.Context, platform store.Platform) (store.CampaignStats, error)
	ListAnalysisResults(ctx context.Context, platform store.Platform) ([]store.AnalysisResult, error)
	AnalysisStats(ctx context.Context) (store.AnalysisStats, error)
	Ping(ctx context.Context) error
}

// Options configures the dashboard app.
type Options struct {
	Store        Store
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger
	AvatarsDir   string
	YTAvatarsDir string
	StaticDir    string
	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

type server struct {
	store   Store
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// New builds the fiber app with every route registered.
func New(opts Options) *fiber.App {
	s := &server{
		store:   opts.Store,
		logger:  logging.NewComponentLogger(opts.Logger, "dashboard"),
		metrics: opts.Metrics,
	}
	app := fiber.New(fiber.Config{
		AppName:               "creatorscope",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          s.handleError,
	})

	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,PUT,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(s.observe)

	app.Get("/healthz", s.health)
	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	api := app.Group("/api")
	s.registerInstagram(api)
	s.registerYouTube(api.Group("/yt"))
	api.Get("/analysis", s.listAnalysis)
	api.Get("/analysis/stats", s.analysisStats)

	if opts.AvatarsDir != "" {
		app.Static("/avatars", opts.AvatarsDir)
	}
	if opts.YTAvatarsDir != "" {
		app.Static("/yt-avatars", opts.YTAvatarsDir)
	}
	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}
	return app
}

// Serve listens on bind until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, bind string, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "dashboard")
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(bind)
	}()
	logger.Info("dashboard listening",
		logging.String(logging.FieldEventType, "dashboard_started"),
		logging.String("bind", bind),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	logger.Info("dashboard stopped", logging.String(logging.FieldEventType, "dashboard_stopped"))
	return nil
}

func (s *server) observe(c *fiber.Ctx) error {
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}
	s.metrics.ObserveHTTP(c.Method(), strconv.Itoa(status))
	return err
}

func (s *server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logging.ErrorWithContext(s.logger, "request failed", "dashboard_request_failed",
			logging.String("method", c.Method()),
			logging.String("path", c.Path()),
			logging.String(logging.FieldErrorHint, "check the database file and its permissions"),
			logging.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func (s *server) health(c *fiber.Ctx) error {
	if err := s.store.Ping(c.UserContext()); err != nil {
		logging.WarnWithContext(s.logger, "health check failed", "dashboard_health_failed",
			logging.String(logging.FieldErrorHint, "run creatorscope stats to inspect the database"),
			logging.String(logging.FieldImpact, "dashboard reports unhealthy"),
			logging.Error(err),
		)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *server) listAnalysis(c *fiber.Ctx) error {
	var platform store.Platform
	if raw := c.Query("platform"); raw != "" {
		parsed, err := store.ParsePlatform(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid platform. Must be one of: instagram, youtube")
		}
		platform = parsed
	}
	results, err := s.store.ListAnalysisResults(c.UserContext(), platform)
	if err != nil {
		return err
	}
	return c.JSON(results)
}

func (s *server) analysisStats(c *fiber.Ctx) error {
	stats, err := s.store.AnalysisStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
