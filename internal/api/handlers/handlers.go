// Package handlers implements the dashboard JSON API: zone reads, system
// lifecycle operations, patrol action tracking, and the inbound vision
// webhook. Handlers are thin: reads come straight from the store, writes
// delegate to the orchestrator, and responses use the core envelopes.
package handlers

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"shorewatch/internal/store"
	"shorewatch/internal/types"
)

// SystemController is the orchestrator surface the handlers drive.
type SystemController interface {
	StartAll(ctx context.Context) ([]string, string, error)
	StopAll(ctx context.Context) error
	EnableDemoMode(ctx context.Context) error
	DisableDemoMode(ctx context.Context) error
	TriggerLiveMonitor(ctx context.Context, zoneID string) (string, error)
	TriggerLiveDigest(ctx context.Context, zoneID string) error
	HandleWebhook(ctx context.Context, payload types.VisionWebhookPayload)
	Running() bool
}

// Handler carries the shared dependencies for all API handlers.
type Handler struct {
	store    *store.Store
	control  SystemController
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates the handler set.
func New(st *store.Store, control SystemController, logger *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		control:  control,
		logger:   logger,
		validate: validator.New(),
	}
}

// Mount registers all dashboard routes on the router.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/zones", h.ListZones)
		r.Get("/zones/{zoneID}", h.GetZone)
		r.Post("/zones/{zoneID}/monitor", h.TriggerMonitor)
		r.Post("/zones/{zoneID}/digest", h.TriggerDigest)

		r.Get("/system/status", h.SystemStatus)
		r.Post("/system/start", h.SystemStart)
		r.Post("/system/stop", h.SystemStop)
		r.Post("/system/demo/start", h.DemoStart)
		r.Post("/system/demo/stop", h.DemoStop)

		r.Get("/patrol/alerts", h.PatrolAlerts)
		r.Post("/patrol/resolve", h.PatrolResolve)
		r.Get("/patrol/resolved", h.PatrolResolved)

		r.Post("/webhooks/vision", h.VisionWebhook)
	})
}
