// Package app wires configuration, storage, caching, models, controllers and
// templates into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/cache"
	"github.com/prodigyview/helium/internal/config"
	"github.com/prodigyview/helium/internal/orm/model"
	"github.com/prodigyview/helium/internal/orm/storage"
	"github.com/prodigyview/helium/internal/orm/storage/memstore"
	"github.com/prodigyview/helium/internal/orm/storage/sqlstore"
	"github.com/prodigyview/helium/internal/orm/validation"
	"github.com/prodigyview/helium/internal/web/controller"
	"github.com/prodigyview/helium/internal/web/middleware"
	"github.com/prodigyview/helium/internal/web/route"
	"github.com/prodigyview/helium/internal/web/router"
	"github.com/prodigyview/helium/internal/web/server"
	"github.com/prodigyview/helium/internal/web/static"
	"github.com/prodigyview/helium/internal/web/template"
)

// App is a configured helium application
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	store   storage.Storage
	backend cache.Backend
	cache   *cache.Store
	checker validation.Checker

	definitions *model.Definitions
	controllers *router.Controllers
	templates   fs.FS
	engine      *template.Engine
	routes      *route.Table
	dispatcher  *router.Dispatcher

	extensions []Extension
	closers    []func() error
}

// Option configures an App
type Option func(*App)

// WithLogger replaces the logger built from the configuration
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithStorage replaces the storage opened from the configuration
func WithStorage(store storage.Storage) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithCacheBackend replaces the cache backend selected by the configuration
func WithCacheBackend(backend cache.Backend) Option {
	return func(a *App) {
		a.backend = backend
	}
}

// WithChecker sets the validation checker given to every model
func WithChecker(checker validation.Checker) Option {
	return func(a *App) {
		a.checker = checker
	}
}

// WithTemplates replaces the template root directory
func WithTemplates(fsys fs.FS) Option {
	return func(a *App) {
		a.templates = fsys
	}
}

// WithRoutes replaces the default route table
func WithRoutes(t *route.Table) Option {
	return func(a *App) {
		a.routes = t
	}
}

// WithExtensions adds extensions on top of the ones registered with Extend
func WithExtensions(exts ...Extension) Option {
	return func(a *App) {
		a.extensions = append(a.extensions, exts...)
	}
}

// New builds an application from cfg. Storage connections are opened and
// pinged, then the extensions are registered in order.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:         cfg,
		definitions: model.NewDefinitions(),
		controllers: router.NewControllers(),
		extensions:  registered(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		logger, err := NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		a.logger = logger
	}

	if err := a.openStorage(ctx); err != nil {
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	if a.templates == nil {
		a.templates = os.DirFS(cfg.Templates.Root)
	}
	engineOpts := []template.Option{template.WithLogger(a.logger)}
	if cfg.Templates.Reload {
		engineOpts = append(engineOpts, template.WithReload())
	}
	a.engine = template.NewEngine(a.templates, engineOpts...)

	dispatchOpts := []router.Option{
		router.WithLogger(a.logger),
		router.WithRouteParam(cfg.Server.RouteParam),
	}
	if a.routes != nil {
		dispatchOpts = append(dispatchOpts, router.WithRoutes(a.routes))
	}
	a.dispatcher = router.New(a.controllers, a.engine, dispatchOpts...)

	for _, ext := range a.extensions {
		if err := ext.Register(a); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("extension %s: %w", ext.Name(), err)
		}
		a.logger.Debug("extension registered", zap.String("extension", ext.Name()))
	}
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if len(a.cfg.Database.Connections) == 0 {
		a.logger.Warn("no database connections configured, using the in-memory document store")
		a.store = memstore.New()
		return nil
	}

	conns := make(map[string]sqlstore.ConnectionConfig, len(a.cfg.Database.Connections))
	for name, c := range a.cfg.Database.Connections {
		conns[name] = sqlstore.ConnectionConfig{Driver: c.Driver, URL: c.URL, Schema: c.Schema}
	}
	def := a.cfg.Database.Default
	if def == "" {
		def = a.cfg.ConnectionNames()[0]
	}
	store, err := sqlstore.Open(ctx, conns, def, sqlstore.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	return nil
}

func (a *App) openCache(ctx context.Context) error {
	backend := a.backend
	if backend == nil {
		cc := cache.Config{DefaultTTL: a.cfg.Cache.TTL, Prefix: a.cfg.Cache.Prefix}
		switch a.cfg.Cache.Driver {
		case "redis":
			rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
				Addr:     a.cfg.Cache.Addr,
				Password: a.cfg.Cache.Password,
				DB:       a.cfg.Cache.DB,
				Cache:    cc,
			})
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			backend = rc
		default:
			backend = cache.NewMemoryCache(cc)
		}
	}
	a.cache = cache.NewStore(backend, a.logger)
	a.closers = append(a.closers, a.cache.Close)
	return nil
}

// Config returns the configuration
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger
func (a *App) Logger() *zap.Logger { return a.logger }

// Storage returns the storage collaborator
func (a *App) Storage() storage.Storage { return a.store }

// Cache returns the model cache
func (a *App) Cache() *cache.Store { return a.cache }

// Definitions returns the model definitions table
func (a *App) Definitions() *model.Definitions { return a.definitions }

// Controllers returns the controller table
func (a *App) Controllers() *router.Controllers { return a.controllers }

// Dispatcher returns the dispatcher
func (a *App) Dispatcher() *router.Dispatcher { return a.dispatcher }

// Extensions returns the names of the registered extensions
func (a *App) Extensions() []string {
	names := make([]string, 0, len(a.extensions))
	for _, ext := range a.extensions {
		names = append(names, ext.Name())
	}
	return names
}

// RegisterModel adds model definitions
func (a *App) RegisterModel(defs ...*model.Definition) error {
	for _, def := range defs {
		if err := a.definitions.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterController adds a controller factory under name
func (a *App) RegisterController(name string, factory controller.Factory) error {
	return a.controllers.Register(name, factory)
}

// modelConfig returns the configuration of def, applying the application
// defaults when the definition carries none
func (a *App) modelConfig(def *model.Definition) model.Config {
	if def.Config != nil {
		return *def.Config
	}
	cfg := model.DefaultConfig()
	cfg.CreateTable = a.cfg.Model.CreateTable
	cfg.ColumnCheck = a.cfg.Model.ColumnCheck
	cfg.DisplayErrors = a.cfg.Model.DisplayErrors
	if a.cfg.Cache.TTL > 0 {
		cfg.CacheTTL = a.cfg.Cache.TTL
	}
	return cfg
}

// NewModel creates an instance of the named model bound to the application's
// storage, cache and logger. opts are applied last.
func (a *App) NewModel(name string, opts ...model.Option) (*model.Model, error) {
	def, err := a.definitions.Lookup(name)
	if err != nil {
		return nil, err
	}
	base := []model.Option{
		model.WithConfig(a.modelConfig(def)),
		model.WithCache(a.cache),
		model.WithLogger(a.logger),
		model.WithDefinitions(a.definitions),
	}
	if a.checker != nil {
		base = append(base, model.WithChecker(a.checker))
	}
	return model.New(def, a.store, append(base, opts...)...), nil
}

// SyncResult is the outcome of a schema sync for one model
type SyncResult struct {
	Model string
	Table string
	Err   error
}

// SyncSchemas runs CheckSchema on every registered model. All models are
// attempted; the returned error joins the failures.
func (a *App) SyncSchemas(ctx context.Context, force bool) ([]SyncResult, error) {
	var (
		results []SyncResult
		errs    []error
	)
	for _, name := range a.definitions.Names() {
		m, err := a.NewModel(name)
		if err != nil {
			return results, err
		}
		res := SyncResult{Model: name, Table: m.TableName(true)}
		if res.Err = m.CheckSchema(ctx, force); res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, res.Err))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Handler returns the HTTP handler: the middleware stack in front of the
// public assets and a catch-all route to the dispatcher
func (a *App) Handler() http.Handler {
	stack := middleware.NewChain(
		middleware.RequestID(),
		middleware.Recovery(a.logger),
		middleware.Logging(a.logger),
	)

	r := chi.NewRouter()
	r.Use(stack.Apply)
	if prefix := a.cfg.Server.StaticPrefix; prefix != "" {
		if public, err := fs.Sub(a.templates, "public"); err == nil {
			r.Handle(prefix+"/*", static.FileServer(public, static.DefaultConfig(prefix)))
		}
	}
	r.Handle("/*", a.dispatcher)
	return r
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down and closes the application.
func (a *App) Run(ctx context.Context) error {
	sc := server.DefaultConfig(a.Handler())
	sc.Address = a.cfg.Server.Addr()
	if a.cfg.Server.ShutdownTimeout > 0 {
		sc.ShutdownTimeout = a.cfg.Server.ShutdownTimeout
	}

	srv, err := server.New(sc, a.logger)
	if err != nil {
		return err
	}
	srv.RegisterHook(func(context.Context) error {
		return a.Close()
	})
	return srv.Serve(ctx)
}

// Close releases the cache and storage connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
