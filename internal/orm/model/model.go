// Package model implements the persistence model: a schema-declared record
// that can synchronise its table, validate input and read or write rows
// through a storage collaborator.
package model

import (
	"context"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/cache"
	"github.com/prodigyview/helium/internal/collection"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
	"github.com/prodigyview/helium/internal/orm/validation"
	"github.com/prodigyview/helium/internal/registry"
)

// PaginationKey is the collection key holding pagination metadata after a paginated Find
const PaginationKey = "he2pagination"

// Model is one instance of a defined model. Its collection holds the fields of
// the loaded record plus, after Find, the rows of the result set under integer keys.
type Model struct {
	def        *Definition
	cfg        Config
	store      storage.Storage
	cache      *cache.Store
	registry   *registry.Registry
	defs       *Definitions
	logger     *zap.Logger
	engine     *validation.Engine
	collection *collection.Collection
	errors     validation.Errors
	pagination *storage.Pagination

	seed         map[string]any
	options      []Option
	interceptors []Interceptor
	handlers     map[Operation]Handler
}

// Option configures a Model
type Option func(*Model)

// WithData seeds the collection. The last WithData wins.
func WithData(data map[string]any) Option {
	return func(m *Model) {
		m.seed = data
	}
}

// WithCache enables First/Find result caching through store
func WithCache(store *cache.Store) Option {
	return func(m *Model) {
		m.cache = store
	}
}

// WithChecker replaces the validation predicate checker
func WithChecker(checker validation.Checker) Option {
	return func(m *Model) {
		m.engine = validation.NewEngine(m.def.Validators, checker)
	}
}

// WithRegistry publishes validation errors to r instead of the registry
// carried by the operation's context
func WithRegistry(r *registry.Registry) Option {
	return func(m *Model) {
		m.registry = r
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithInterceptors wraps every operation. The first interceptor runs outermost.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(m *Model) {
		m.interceptors = append(m.interceptors, interceptors...)
	}
}

// WithDefinitions resolves model references in joins and model results
func WithDefinitions(defs *Definitions) Option {
	return func(m *Model) {
		m.defs = defs
	}
}

// WithConfig replaces the definition's configuration
func WithConfig(cfg Config) Option {
	return func(m *Model) {
		m.cfg = cfg
	}
}

// New creates a model instance of def backed by store
func New(def *Definition, store storage.Storage, opts ...Option) *Model {
	m := &Model{
		def:        def,
		cfg:        def.config(),
		store:      store,
		logger:     zap.NewNop(),
		engine:     validation.NewEngine(def.Validators, nil),
		collection: collection.New(),
		errors:     validation.Errors{},
		options:    opts,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.load(m.seed)
	if m.cfg.CacheTTL == 0 {
		m.cfg.CacheTTL = DefaultCacheTTL
	}
	m.logger = m.logger.With(zap.String("model", def.Name))

	base := map[Operation]Handler{
		OpCheckSchema: m.checkSchema,
		OpValidate:    m.validate,
		OpCreate:      m.create,
		OpUpdate:      m.update,
		OpDelete:      m.delete,
		OpFirst:       m.first,
		OpFind:        m.find,
		OpSync:        m.sync,
	}
	m.handlers = make(map[Operation]Handler, len(base))
	for op, h := range base {
		m.handlers[op] = chain(h, m.interceptors)
	}
	return m
}

// spawn creates a sibling instance with the same collaborators, seeded with data
func (m *Model) spawn(data map[string]any) *Model {
	opts := append(append([]Option(nil), m.options...), WithData(data))
	return New(m.def, m.store, opts...)
}

func (m *Model) run(ctx context.Context, inv *Invocation) error {
	inv.Model = m
	return m.handlers[inv.Operation](ctx, inv)
}

// Definition returns the model's definition
func (m *Model) Definition() *Definition {
	return m.def
}

// Config returns the effective configuration
func (m *Model) Config() Config {
	return m.cfg
}

// Schema returns the declared fields
func (m *Model) Schema() *schema.Schema {
	return m.def.Schema
}

// Collection returns the model's data
func (m *Model) Collection() *collection.Collection {
	return m.collection
}

// Get returns the value of a collection field
func (m *Model) Get(field string) any {
	return m.collection.Get(field)
}

// Set assigns a collection field
func (m *Model) Set(field string, value any) {
	m.collection.Set(field, value)
}

// Pagination returns the metadata of the last paginated Find, or nil
func (m *Model) Pagination() *storage.Pagination {
	return m.pagination
}

// Error returns the validation messages recorded for field joined together, or ""
func (m *Model) Error(field string) string {
	return m.errors.Field(field)
}

// ValidationErrors returns a copy of the errors of the last validation
func (m *Model) ValidationErrors() validation.Errors {
	return validation.Errors(m.errors.Map())
}

// TableName returns the model's table. With useSchema the storage formats it
// for the active connection (e.g. schema-qualified).
func (m *Model) TableName(useSchema bool) string {
	name := m.cfg.TableName
	if name == "" {
		name = schema.TableName(m.def.Name)
	}
	if useSchema {
		return m.store.FormatTableName(name)
	}
	return name
}

func (m *Model) documents() bool {
	return m.store.DatabaseType().IsSchemaless()
}

// useConnection switches the storage to the configured connection. The
// returned func restores the previous one and must run on every exit path.
func (m *Model) useConnection() (func(), error) {
	if m.cfg.Connection == "" {
		return func() {}, nil
	}
	previous := m.store.Connection()
	if previous == m.cfg.Connection {
		return func() {}, nil
	}
	if err := m.store.UseConnection(m.cfg.Connection); err != nil {
		return nil, err
	}
	return func() {
		if err := m.store.UseConnection(previous); err != nil {
			m.logger.Warn("restore connection", zap.String("connection", previous), zap.Error(err))
		}
	}, nil
}

// defaults returns the values used to fill missing input. With full every
// schema field is present: the collection value when truthy, else the
// declared default. Without full only truthy collection values are returned.
func (m *Model) defaults(full bool) map[string]any {
	out := make(map[string]any)
	for _, f := range m.def.Schema.Fields() {
		v := m.collection.Get(f.Name)
		switch {
		case schema.Truthy(v):
			out[f.Name] = v
		case full:
			out[f.Name] = f.DefaultValue()
		}
	}
	return out
}

// keyValues returns the primary key values of the loaded record
func (m *Model) keyValues() map[string]any {
	keys := make(map[string]any)
	for _, name := range m.def.Schema.PrimaryKeys() {
		f, _ := m.def.Schema.Field(name)
		if v := m.collection.Get(name); schema.Truthy(v) {
			keys[name] = v
		} else {
			keys[name] = f.DefaultValue()
		}
	}
	return keys
}

// load copies the non-integer keys of row into the collection
func (m *Model) load(row map[string]any) {
	for _, k := range sortedKeys(row) {
		if !collection.IsInteger(k) {
			m.collection.Set(k, row[k])
		}
	}
}

// resolver renders join tables against this model's storage and definitions
type resolver struct {
	m *Model
}

func (r resolver) FormatTableName(name string) string {
	return r.m.store.FormatTableName(name)
}

func (r resolver) ModelTable(name string) (string, error) {
	if r.m.defs == nil {
		return "", ErrUnknownModel
	}
	def, err := r.m.defs.Lookup(name)
	if err != nil {
		return "", err
	}
	cfg := def.config()
	table := cfg.TableName
	if table == "" {
		table = schema.TableName(def.Name)
	}
	return r.m.store.FormatTableName(table), nil
}

// JoinTable renders the declared join name, or returns name unchanged when it
// is not declared
func (m *Model) JoinTable(name string) (string, error) {
	def, ok := m.def.Joins[name]
	if !ok {
		return name, nil
	}
	return condition.RenderJoin(def, m.def.Joins, resolver{m})
}
