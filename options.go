package ostium

import (
	"log/slog"

	"github.com/ostium-io/ostium/plugin"
	"github.com/ostium-io/ostium/resource"
	"github.com/ostium-io/ostium/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithResources registers resource descriptors at construction time.
func WithResources(descriptors ...*resource.Descriptor) Option {
	return func(e *Engine) {
		for _, d := range descriptors {
			e.resources.MustRegister(d)
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithTracer sets the resolution tracer.
func WithTracer(t Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}

// WithRoleResolver registers a custom role resolver at construction time.
func WithRoleResolver(roleID string, resolver RoleResolver) Option {
	return func(e *Engine) { e.resolvers[roleID] = resolver }
}
