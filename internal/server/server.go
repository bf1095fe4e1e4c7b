// Package server exposes the router and the version store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/agents"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/resume"
	"github.com/bhanmrinal/cf-project/internal/router"
)

const (
	app              = "careerflow"
	defaultBodyLimit = 1 << 20
	conversationView = 20
)

type Config struct {
	Listen    string `mapstructure:"listen" validate:"required"`
	BodyLimit int    `mapstructure:"body-limit" validate:"gte=0"`
}

// Conversations is the chat surface the handlers drive.
type Conversations interface {
	StartConversation(ctx context.Context, userID string) (conversation.Conversation, error)
	AttachResume(ctx context.Context, conversationID string, content resume.Content, label string) (resume.Version, error)
	HandleTurn(ctx context.Context, conversationID, message string) (*router.ChatReply, error)
}

// Versions is the read and revert surface of the version store.
type Versions interface {
	Current(ctx context.Context, resumeID string) (resume.Version, error)
	Get(ctx context.Context, resumeID string, seq int) (resume.Version, error)
	History(ctx context.Context, resumeID string) ([]resume.Version, int, error)
	Revert(ctx context.Context, resumeID string, seq int) (resume.Version, error)
	Compare(ctx context.Context, resumeID string, a, b int) ([]resume.SectionDiff, error)
}

type Deps struct {
	Router   Conversations
	Store    conversation.Store
	Versions Versions
	Agents   []agents.Info
	Logger   *zap.Logger
}

type Server struct {
	app      *fiber.App
	router   Conversations
	store    conversation.Store
	versions Versions
	agents   []agents.Info
	validate *validator.Validate
	logger   *zap.Logger
}

func New(deps Deps, cfg Config) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}

	s := &Server{
		router:   deps.Router,
		store:    deps.Store,
		versions: deps.Versions,
		agents:   deps.Agents,
		validate: validator.New(),
		logger:   log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               app,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.register()

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) register() {
	v1 := s.app.Group("/api").Group("/v1")

	v1.Get("/health", s.health)
	v1.Get("/agents", s.listAgents)

	c := v1.Group("/conversations")
	c.Post("/", s.createConversation)
	c.Get("/:id", s.getConversation)
	c.Post("/:id/messages", s.postMessage)

	r := v1.Group("/resumes")
	r.Post("/", s.uploadResume)
	r.Get("/:id/versions", s.listVersions)
	r.Get("/:id/versions/current", s.currentVersion)
	r.Get("/:id/versions/:seq", s.getVersion)
	r.Post("/:id/revert/:seq", s.revert)
	r.Get("/:id/compare/:a/:b", s.compare)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", fields...)
	} else {
		s.logger.Debug("request handled", fields...)
	}
	return err
}
