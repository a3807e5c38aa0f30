// Package controller provides the base every application controller embeds:
// per-request view and layout selection, a named action table, redirects and
// the default not-found action.
package controller

import (
	"context"
	"net/http"

	"github.com/prodigyview/helium/internal/registry"
)

// NotFoundAction is the action dispatched when the requested one does not exist
const NotFoundAction = "error404"

// NotFoundBody is the body written by the default not-found action
const NotFoundBody = "Error 404 Page Not Found"

// Action handles one controller action
type Action func(ctx context.Context) (Result, error)

// Controller is what the dispatcher drives
type Controller interface {
	// Action returns the named action. NotFoundAction always resolves.
	Action(name string) (Action, bool)
	View() View
	Template() Template
	Cleanup()
}

// Factory builds a controller for one dispatch
type Factory func(reg *registry.Registry) Controller

// Base implements Controller. Embed it and register actions with Handle.
type Base struct {
	registry *registry.Registry
	view     View
	template Template
	actions  map[string]Action
}

// NewBase creates a base bound to the dispatch registry
func NewBase(reg *registry.Registry) *Base {
	return &Base{
		registry: reg,
		view:     DefaultView(),
		template: DefaultTemplate(),
		actions:  make(map[string]Action),
	}
}

// Registry returns the dispatch registry
func (b *Base) Registry() *registry.Registry {
	return b.registry
}

// Handle registers an action under name
func (b *Base) Handle(name string, action Action) {
	b.actions[name] = action
}

// Action implements Controller
func (b *Base) Action(name string) (Action, bool) {
	if a, ok := b.actions[name]; ok {
		return a, true
	}
	if name == NotFoundAction {
		return b.Error404, true
	}
	return nil, false
}

// Actions returns the registered action names
func (b *Base) Actions() []string {
	names := make([]string, 0, len(b.actions))
	for name := range b.actions {
		names = append(names, name)
	}
	return names
}

// View implements Controller
func (b *Base) View() View {
	return b.view
}

// Template implements Controller
func (b *Base) Template() Template {
	return b.template
}

// RenderView overrides the view descriptor with the non-zero fields of v
func (b *Base) RenderView(v View) {
	b.view = b.view.Merge(v)
}

// RenderTemplate overrides the layout descriptor with the non-zero fields of t
func (b *Base) RenderTemplate(t Template) {
	b.template = b.template.Merge(t)
}

// Redirect returns a 302 redirect to url
func (b *Base) Redirect(url string) *Redirect {
	return &Redirect{URL: url, Code: http.StatusFound}
}

// Error404 is the default not-found action
func (b *Base) Error404(context.Context) (Result, error) {
	return &Halt{Code: http.StatusNotFound, Body: NotFoundBody}, nil
}

// Cleanup runs after the action, before rendering
func (b *Base) Cleanup() {}
