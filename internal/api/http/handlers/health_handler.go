package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// Pinger checks one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	required    map[string]Pinger
	optional    map[string]Pinger
	timeout     time.Duration
}

// NewHealthHandler returns a new handler instance. Required pingers gate readiness;
// optional ones are reported but only degrade it.
func NewHealthHandler(serviceName, version string, required, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		required:    required,
		optional:    optional,
		timeout:     2 * time.Second,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every dependency concurrently.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var (
		mu        sync.Mutex
		depStatus = fiber.Map{}
		degraded  bool
		required  errgroup.Group
		optional  errgroup.Group
	)
	run := func(g *errgroup.Group, name string, p Pinger) {
		g.Go(func() error {
			err := p.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				depStatus[name] = err.Error()
			} else {
				depStatus[name] = "ok"
			}
			return err
		})
	}
	for name, p := range h.required {
		run(&required, name, p)
	}
	for name, p := range h.optional {
		run(&optional, name, p)
	}
	requiredErr := required.Wait()
	if optional.Wait() != nil {
		degraded = true
	}

	if requiredErr != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": depStatus,
			},
		})
	}

	status := "ready"
	if degraded {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":       status,
		"dependencies": depStatus,
	})
}
