// Package httpapi exposes an rpg.Manager and its save store over HTTP.
package httpapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/rpg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server serialises every request against one manager and game state.
type Server struct {
	mu      sync.Mutex
	manager *rpg.Manager
	state   *rpg.GameState
	store   automata.Store

	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithRegistry sets the registry served on /metrics. The default is a fresh
// registry per server. Servers given the same registry share counters.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// New creates a server. state may be nil, in which case a default
// GameState is used.
func New(manager *rpg.Manager, state *rpg.GameState, store automata.Store, opts ...Option) (*Server, error) {
	if state == nil {
		state = rpg.NewGameState()
	}
	s := &Server{
		manager: manager,
		state:   state,
		store:   store,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("automata: register metrics: %w", err)
	}
	s.metrics = m
	return s, nil
}

// App builds the fiber application with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: s.handleError})
	app.Use(s.requestLogger())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// ── Automata ──────────────────────────────────────────────────────
	app.Get("/automata/:sub", s.getAutomaton)
	app.Post("/automata/:sub/nodes", s.addNode)
	app.Get("/automata/:sub/nodes", s.listNodes)
	app.Get("/automata/:sub/nodes/:id", s.getNode)
	app.Delete("/automata/:sub/nodes/:id", s.removeNode)
	app.Get("/automata/:sub/nodes/:id/children", s.getChildren)
	app.Get("/automata/:sub/nodes/:id/parent", s.getParent)
	app.Patch("/automata/:sub/nodes/:id/metadata", s.patchMetadata)
	app.Post("/automata/:sub/nodes/:id/events", s.triggerEvent)
	app.Post("/automata/:sub/transitions", s.addTransition)
	app.Get("/automata/:sub/path", s.pathExists)

	// ── Saves ─────────────────────────────────────────────────────────
	app.Get("/saves", s.listSaves)
	app.Post("/saves/:slot", s.save)
	app.Post("/saves/:slot/load", s.load)
	app.Delete("/saves/:slot", s.deleteSave)

	// ── Game state ────────────────────────────────────────────────────
	app.Get("/state", s.getState)
	app.Put("/state", s.putState)

	return app
}

// requestLogger renders handler errors itself so the logged status is the
// one sent.
func (s *Server) requestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := s.handleError(c, err); herr != nil {
				return herr
			}
		}
		s.log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

// handleError writes err as a JSON error body. fiber errors keep their
// code; store and document errors are mapped; anything else is a 500.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case errors.Is(err, automata.ErrDocumentNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, automata.ErrNodeNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, automata.ErrInvalidDocument), errors.Is(err, automata.ErrRootRemoval):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, automata.ErrDispatchInProgress):
		status = fiber.StatusConflict
	default:
		s.log.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

var (
	errUnknownSubsystem = fiber.NewError(fiber.StatusNotFound, "unknown subsystem")
	errInvalidID        = fiber.NewError(fiber.StatusBadRequest, "invalid id")
	errInvalidBody      = fiber.NewError(fiber.StatusBadRequest, "invalid body")
)

func (s *Server) subsystem(c fiber.Ctx) (*automata.Automaton, error) {
	a, ok := s.manager.Subsystem(c.Params("sub"))
	if !ok {
		return nil, errUnknownSubsystem
	}
	return a, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
