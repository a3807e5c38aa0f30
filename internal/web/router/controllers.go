package router

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prodigyview/helium/internal/web/controller"
)

// ControllerSuffix is appended to a route's controller name to form the
// registration key, e.g. posts -> postsController
const ControllerSuffix = "Controller"

// ErrorController is the controller dispatched when the requested one is not registered
const ErrorController = "error"

// Controllers is the table of controller factories, keyed by <name>Controller
type Controllers struct {
	mu        sync.RWMutex
	factories map[string]controller.Factory
}

// NewControllers creates an empty table
func NewControllers() *Controllers {
	return &Controllers{factories: make(map[string]controller.Factory)}
}

// Key returns the registration key of a controller name
func Key(name string) string {
	return name + ControllerSuffix
}

// Register adds a factory under name
func (c *Controllers) Register(name string, factory controller.Factory) error {
	if strings.TrimSpace(name) == "" || factory == nil {
		return fmt.Errorf("controller %q: name and factory are required", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.factories[Key(name)]; ok {
		return fmt.Errorf("controller %q already registered", name)
	}
	c.factories[Key(name)] = factory
	return nil
}

// MustRegister is Register that panics on error
func (c *Controllers) MustRegister(name string, factory controller.Factory) {
	if err := c.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory of a controller name
func (c *Controllers) Lookup(name string) (controller.Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[Key(name)]
	return f, ok
}

// Len returns the number of registered controllers
func (c *Controllers) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.factories)
}

// Names returns the registered controller names, sorted
func (c *Controllers) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for key := range c.factories {
		names = append(names, strings.TrimSuffix(key, ControllerSuffix))
	}
	sort.Strings(names)
	return names
}
