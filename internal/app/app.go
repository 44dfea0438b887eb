// -----------------------------------------------------------------------
// Last Modified: Wednesday, 14th October 2026 9:03:18 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/handlers"
	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/services/assembly"
	"github.com/ternarybob/docmark/internal/services/config"
	"github.com/ternarybob/docmark/internal/services/cover"
	"github.com/ternarybob/docmark/internal/services/pdf"
	"github.com/ternarybob/docmark/internal/services/sampler"
	"github.com/ternarybob/docmark/internal/services/upload"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Document services
	Engine          interfaces.DocumentEngine
	Sampler         interfaces.HighlightSampler
	CoverService    interfaces.CoverService
	AssemblyService interfaces.AssemblyService
	UploadValidator *upload.Validator

	// Config service
	ConfigService *config.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ConfigHandler   *handlers.ConfigHandler
	DocumentHandler *handlers.DocumentHandler
}

// Option overrides a component before the rest of the graph is built
type Option func(*App)

// WithCoverService replaces the HTTP cover client
func WithCoverService(svc interfaces.CoverService) Option {
	return func(a *App) {
		a.CoverService = svc
	}
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger, configPaths []string, opts ...Option) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initServices(configPaths); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("layout_backend", cfg.Layout.Backend).
		Strs("allowed_kinds", app.UploadValidator.AllowedKinds()).
		Str("cover_url", cfg.Cover.BaseURL+cfg.Cover.Path).
		Msg("Application initialization complete")

	return app, nil
}

// initServices builds the assembly pipeline and its collaborators.
// Order matters: the assembly service needs the engine, sampler and cover client.
// 1. Document engine (pdfcpu + fpdf)
// 2. Sampler
// 3. Cover client (skipped when injected via WithCoverService)
// 4. Assembly service
// 5. Upload validator
// 6. Config service
func (a *App) initServices(configPaths []string) error {
	var err error

	// 1. Initialize document engine
	engineOpts := pdf.OptionsFromConfig(a.Config)
	a.Engine = pdf.NewEngine(engineOpts, a.Logger)
	a.Logger.Debug().
		Str("backend", engineOpts.LayoutBackend).
		Str("page_size", engineOpts.PageSize).
		Msg("Document engine initialized")

	// 2. Initialize sampler
	a.Sampler = sampler.NewService()

	// 3. Initialize cover client
	if a.CoverService == nil {
		a.CoverService = cover.NewClientFromConfig(a.Config.Cover, a.Logger)
	}

	// 4. Initialize assembly service
	a.AssemblyService = assembly.NewService(
		a.Engine,
		a.Sampler,
		a.CoverService,
		assembly.OptionsFromConfig(a.Config),
		a.Logger,
	)

	// 5. Initialize upload validator
	a.UploadValidator, err = upload.NewValidator(a.Config.Upload, a.Logger)
	if err != nil {
		return fmt.Errorf("invalid upload settings: %w", err)
	}

	// 6. Initialize config service (read-only, no reload)
	a.ConfigService, err = config.NewService(a.Config, a.Logger, configPaths...)
	if err != nil {
		return fmt.Errorf("failed to create config service: %w", err)
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.ConfigHandler = handlers.NewConfigHandler(a.Logger, a.Config, a.ConfigService)
	a.DocumentHandler = handlers.NewDocumentHandler(a.Logger, a.AssemblyService, a.Engine, a.UploadValidator)
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	a.Logger.Info().Msg("Application closed")
	return nil
}
