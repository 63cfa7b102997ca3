// Package extension provides a Forge extension entry point for Ostium.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/ostium-io/ostium"
	"github.com/ostium-io/ostium/api"
	"github.com/ostium-io/ostium/plugin"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "ostium"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Weighted ACL resolution engine with dynamic roles and relation tuples"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Ostium as a Forge extension.
type Extension struct {
	config     Config
	eng        *ostium.Engine
	apiHandler *api.API
	logger     *slog.Logger
	engineOpts []ostium.Option
	plugins    []plugin.Plugin
}

// New creates an Ostium Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Ostium engine.
func (e *Extension) Engine() *ostium.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*ostium.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("ostium: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]ostium.Option, 0, len(e.engineOpts)+len(e.plugins)+2)
	opts = append(opts, ostium.WithLogger(logger))

	if cfg := e.engineConfig(); cfg != nil {
		opts = append(opts, ostium.WithConfig(*cfg))
	}

	// Try to resolve the store from the DI container; option-provided
	// stores override it below.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, ostium.WithStore(s))
	}

	opts = append(opts, e.engineOpts...)

	for _, p := range e.plugins {
		opts = append(opts, ostium.WithPlugin(p))
	}

	eng, err := ostium.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("ostium: create engine: %w", err)
	}
	e.eng = eng

	e.apiHandler = api.New(eng, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("ostium: register routes: %w", err)
		}
	}

	return nil
}

// engineConfig translates extension config into engine config, or nil
// when nothing was set.
func (e *Extension) engineConfig() *ostium.Config {
	if e.config.DefaultPermission == "" && !e.config.AuditAll && e.config.MaxRelationDepth == 0 {
		return nil
	}
	cfg := ostium.DefaultConfig()
	if e.config.DefaultPermission != "" {
		cfg.DefaultPermission = sec.Permission(e.config.DefaultPermission)
	}
	cfg.AuditAll = e.config.AuditAll
	if e.config.MaxRelationDepth > 0 {
		cfg.MaxRelationDepth = e.config.MaxRelationDepth
	}
	return &cfg
}

// Start begins the engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("ostium: extension not initialized")
	}

	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("ostium: migration failed: %w", err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("ostium: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("ostium: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all Ostium API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
