// Package api exposes the tracker over HTTP. The surface is thin: requests
// validate, call into the store and reconcilers, and map typed errors to
// status codes. All heavy work stays in the scheduled cycles.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"pricepulse/internal/reconcile"
	"pricepulse/internal/scheduler"
	"pricepulse/internal/store"
	"pricepulse/logger"
	"pricepulse/pkg/errors"
)

// Server is the HTTP front of the tracker
type Server struct {
	app       *fiber.App
	store     store.Store
	extractor reconcile.ProductExtractor
	sched     *scheduler.Service
	cmp       scheduler.ComparisonUpdater
	log       *logger.Logger
}

// NewServer builds the fiber app with all routes registered
func NewServer(st store.Store, extractor reconcile.ProductExtractor, sched *scheduler.Service, cmp scheduler.ComparisonUpdater) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
			WriteTimeout:          30 * time.Second,
		}),
		store:     st,
		extractor: extractor,
		sched:     sched,
		cmp:       cmp,
		log:       logger.ForComponent("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Post("/products/track", s.trackProduct)
	s.app.Get("/products", s.listProducts)
	s.app.Get("/products/:id", s.getProduct)
	s.app.Delete("/products/:id", s.deleteProduct)
	s.app.Get("/products/:id/history", s.getHistory)
	s.app.Get("/products/:id/comparison", s.getComparison)
	s.app.Get("/products/:id/alerts", s.getProductAlerts)

	s.app.Post("/alerts", s.createAlert)
	s.app.Get("/alerts/:id", s.getAlert)
	s.app.Delete("/alerts/:id", s.deleteAlert)

	s.app.Post("/scheduler/trigger/:id", s.triggerUpdate)
	s.app.Get("/health/scheduler", s.schedulerHealth)
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server, honoring the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// fail maps a typed tracker error to an HTTP response
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		status = fiber.StatusNotFound
	case errors.ErrorTypeConflict:
		status = fiber.StatusConflict
	case errors.ErrorTypeUnsupportedPlatform:
		status = fiber.StatusBadRequest
	case errors.ErrorTypeMissingField, errors.ErrorTypePriceParse:
		status = fiber.StatusUnprocessableEntity
	case errors.ErrorTypeUpstreamBlocked, errors.ErrorTypeTimeout:
		status = fiber.StatusBadGateway
	}

	if status == fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"type":  string(errors.TypeOf(err)),
	})
}
