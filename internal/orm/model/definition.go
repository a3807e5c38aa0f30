package model

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/validation"
)

// StorageGridFS marks models whose documents are files in a GridFS bucket
const StorageGridFS = "gridFS"

// DefaultCacheTTL is how long cached query results live unless configured otherwise
const DefaultCacheTTL = 300 * time.Second

var (
	// ErrUnknownModel is returned when a name is not in the definitions table
	ErrUnknownModel = errors.New("unknown model")
	// ErrDuplicateModel is returned when a name is registered twice
	ErrDuplicateModel = errors.New("model already registered")
)

// Config is the per-model configuration
type Config struct {
	// CreateTable creates a missing table on schema checks
	CreateTable bool
	// ColumnCheck adds missing columns on schema checks
	ColumnCheck bool
	// TableName overrides the name derived from the model name
	TableName string
	// Storage is "" or StorageGridFS
	Storage string
	// Connection switches the storage to a named connection for every operation
	Connection string
	// Cache enables result caching for First and Find
	Cache    bool
	CacheTTL time.Duration
	// DisplayErrors formats validation messages for display
	DisplayErrors bool
}

// DefaultConfig returns the configuration models use when none is declared
func DefaultConfig() Config {
	return Config{
		CreateTable:   true,
		ColumnCheck:   true,
		CacheTTL:      DefaultCacheTTL,
		DisplayErrors: true,
	}
}

// Definition declares a model: its name, fields, validators and joins
type Definition struct {
	// Name is the model name in CamelCase; the table name derives from it
	Name       string
	Schema     *schema.Schema
	Validators validation.Set
	Joins      condition.Joins
	// Config is DefaultConfig when nil
	Config *Config
}

func (d *Definition) config() Config {
	if d.Config == nil {
		return DefaultConfig()
	}
	return *d.Config
}

// Definitions is the table of registered models, looked up by name
type Definitions struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewDefinitions creates an empty table
func NewDefinitions() *Definitions {
	return &Definitions{defs: make(map[string]*Definition)}
}

// Register validates def and adds it to the table
func (d *Definitions) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return errors.New("model definition needs a name")
	}
	if err := def.Schema.Validate(); err != nil {
		return fmt.Errorf("model %s: %w", def.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, def.Name)
	}
	d.defs[def.Name] = def
	return nil
}

// MustRegister is Register that panics on error, for package-level setup
func (d *Definitions) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := d.Register(def); err != nil {
			panic(err)
		}
	}
}

// Get returns the definition registered under name
func (d *Definitions) Get(name string) (*Definition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.defs[name]
	return def, ok
}

// Lookup is Get returning ErrUnknownModel for missing names
func (d *Definitions) Lookup(name string) (*Definition, error) {
	def, ok := d.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return def, nil
}

// Names returns the registered names, sorted
func (d *Definitions) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.defs))
	for name := range d.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
