package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	enabled := &stubFeature{name: "count", enabled: true}
	disabled := &stubFeature{name: "history", enabled: false}

	m := NewManager()
	m.Register(enabled)
	m.Register(disabled)

	err := m.LoadAll(app)
	assert.NoError(t, err)
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
}

func TestManager_LoadAll_Error(t *testing.T) {
	app := fiber.New()

	failing := &stubFeature{name: "catalog", enabled: true, loadErr: errors.New("boom")}

	m := NewManager()
	m.Register(failing)

	err := m.LoadAll(app)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}
