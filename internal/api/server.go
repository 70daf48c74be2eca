// Package api serves live telemetry and accepts remote joystick commands
// over HTTP and WebSocket, and exposes stored runs read-only.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/san-kum/attsim/internal/log"
	"github.com/san-kum/attsim/internal/storage"
)

const defaultStreamInterval = 100 * time.Millisecond

type Options struct {
	Telemetry *Telemetry
	Control   *Control
	// Store is optional; the /api/runs routes answer 404 without it.
	Store *storage.Store
	// StreamInterval is the /ws/telemetry push period.
	StreamInterval time.Duration
	Logger         log.Logger
}

type Server struct {
	app       *fiber.App
	telemetry *Telemetry
	control   *Control
	store     *storage.Store
	interval  time.Duration
	log       log.Logger
	done      chan struct{}
}

func NewServer(opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = log.Nop()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = NewTelemetry()
	}
	if opts.Control == nil {
		opts.Control = NewControl(0, nil)
	}
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = defaultStreamInterval
	}

	s := &Server{
		telemetry: opts.Telemetry,
		control:   opts.Control,
		store:     opts.Store,
		interval:  opts.StreamInterval,
		log:       l.WithField("component", "api"),
		done:      make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "attsim",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "online", "service": "attsim"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api")
	api.Get("/telemetry", s.handleTelemetry)
	api.Get("/command", s.handleGetCommand)
	api.Post("/command", s.handlePostCommand)
	api.Delete("/command", s.handleReleaseCommand)
	api.Get("/runs", s.handleListRuns)
	api.Get("/runs/:id", s.handleGetRun)
	api.Get("/runs/:id/samples", s.handleGetSamples)

	ws := app.Group("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/telemetry", websocket.New(s.streamTelemetry))
	ws.Get("/control", websocket.New(s.readControl))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down within
// five seconds.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("serving telemetry API on %s", ln.Addr())
		errc <- s.app.Listener(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	close(s.done)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	s.log.Infof("telemetry API stopped")
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) handleTelemetry(c *fiber.Ctx) error {
	sample, ok := s.telemetry.Snapshot()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no telemetry yet")
	}
	return c.JSON(sample)
}

func (s *Server) handleGetCommand(c *fiber.Ctx) error {
	p, ok := s.control.Latest()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no remote command")
	}
	return c.JSON(fiber.Map{"command": p.Command, "seq": p.Seq})
}

func (s *Server) handlePostCommand(c *fiber.Ctx) error {
	var msg CommandMsg
	if err := c.BodyParser(&msg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	p, err := s.control.Submit(msg)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "seq": p.Seq})
}

func (s *Server) handleReleaseCommand(c *fiber.Ctx) error {
	s.control.Release()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListRuns(c *fiber.Ctx) error {
	if s.store == nil {
		return fiber.NewError(fiber.StatusNotFound, "no run store")
	}
	runs, err := s.store.List()
	if err != nil {
		return err
	}
	return c.JSON(runs)
}

func (s *Server) handleGetRun(c *fiber.Ctx) error {
	id, err := s.runID(c)
	if err != nil {
		return err
	}
	meta, err := s.store.Load(id)
	if err != nil {
		return notFound(err, id)
	}
	return c.JSON(meta)
}

func (s *Server) handleGetSamples(c *fiber.Ctx) error {
	id, err := s.runID(c)
	if err != nil {
		return err
	}
	samples, err := s.store.LoadSamples(id)
	if err != nil {
		return notFound(err, id)
	}
	return c.JSON(samples)
}

// runID returns the :id parameter, refusing anything that is not a single
// path element.
func (s *Server) runID(c *fiber.Ctx) (string, error) {
	if s.store == nil {
		return "", fiber.NewError(fiber.StatusNotFound, "no run store")
	}
	id := c.Params("id")
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid run id")
	}
	return id, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, os.ErrNotExist) {
		return fiber.NewError(fiber.StatusNotFound, "run not found: "+id)
	}
	return err
}
