package report

import (
	"cycle-count/core/storage"
	"cycle-count/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	exporter *Exporter
	handler  *Handler
}

// NewFeature creates a new Report feature.
func NewFeature(client storage.Client, bucket string, st store.Store, logger *zap.Logger) *Feature {
	exporter := NewExporter(client, bucket, logger)
	h := NewHandler(exporter, st, logger)
	return &Feature{exporter: exporter, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "report"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
