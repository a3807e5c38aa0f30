// Package router dispatches requests to controllers: it resolves the route to
// a controller and action, runs the action and either redirects, writes a
// halted response or renders the view through the template collaborator.
package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
	"github.com/prodigyview/helium/internal/web/response"
	"github.com/prodigyview/helium/internal/web/route"
	"github.com/prodigyview/helium/internal/web/template"
)

const (
	// DefaultName is the controller and action used when the route names none
	DefaultName = "index"
	// DefaultRouteParam is the query parameter carrying the raw route
	DefaultRouteParam = "rt"
)

var (
	// ErrNoErrorController is returned when neither the requested controller
	// nor the error controller is registered
	ErrNoErrorController = errors.New("no error controller registered")
	// ErrNoControllers is returned when the controller table is empty
	ErrNoControllers = errors.New("no controllers registered")
	// ErrNoRenderer is returned when an action returns variables but no
	// template collaborator is configured
	ErrNoRenderer = errors.New("no template renderer configured")
)

// Templates creates the template collaborator of a dispatch
type Templates interface {
	New(reg *registry.Registry) template.Renderer
}

// ActionHandler runs an action of a controller
type ActionHandler func(ctx context.Context, c controller.Controller, action string) (controller.Result, error)

// ActionInterceptor wraps action execution
type ActionInterceptor func(next ActionHandler) ActionHandler

// State is what a dispatch resolved
type State struct {
	// Controller and Action are the names from the route, defaulted to index
	Controller string
	Action     string
	// Resolved is the controller actually dispatched, ErrorController on fallback
	Resolved string
	// Invoked is the action actually run, controller.NotFoundAction when missing
	Invoked string
}

// Dispatcher is the front controller
type Dispatcher struct {
	controllers *Controllers
	templates   Templates
	routes      *route.Table
	routeParam  string
	logger      *zap.Logger

	mu           sync.RWMutex
	interceptors []ActionInterceptor
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRoutes replaces the default route table
func WithRoutes(t *route.Table) Option {
	return func(d *Dispatcher) {
		d.routes = t
	}
}

// WithRouteParam changes the query parameter carrying the raw route
func WithRouteParam(name string) Option {
	return func(d *Dispatcher) {
		d.routeParam = name
	}
}

// New creates a dispatcher. templates may be nil when no action renders.
func New(controllers *Controllers, templates Templates, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		controllers: controllers,
		templates:   templates,
		routeParam:  DefaultRouteParam,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.routes == nil {
		d.routes = route.MustTable()
	}
	return d
}

// Use adds action interceptors. The first one added runs outermost.
func (d *Dispatcher) Use(interceptors ...ActionInterceptor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interceptors = append(d.interceptors, interceptors...)
}

// Routes returns the route table
func (d *Dispatcher) Routes() *route.Table {
	return d.routes
}

// RawRoute returns the route of r: the route parameter when present, else the URL path
func (d *Dispatcher) RawRoute(r *http.Request) string {
	if rt := r.URL.Query().Get(d.routeParam); rt != "" {
		return "/" + rt
	}
	return r.URL.Path
}

// Resolve parses the raw route and defaults the controller and action
func (d *Dispatcher) Resolve(raw string) (State, route.Parser) {
	p := d.routes.NewParser()
	p.SetRoute(raw)

	rt := p.Route()
	st := State{Controller: rt.Controller, Action: rt.Action}
	if st.Controller == "" {
		st.Controller = p.Variable("controller")
	}
	if st.Action == "" {
		st.Action = p.Variable("action")
	}
	if st.Controller == "" {
		st.Controller = DefaultName
	}
	if st.Action == "" {
		st.Action = DefaultName
	}
	return st, p
}

// load instantiates the controller of st, falling back to the error controller
func (d *Dispatcher) load(st *State, reg *registry.Registry) (controller.Controller, error) {
	if d.controllers == nil || d.controllers.Len() == 0 {
		return nil, ErrNoControllers
	}
	factory, ok := d.controllers.Lookup(st.Controller)
	st.Resolved = st.Controller
	if !ok {
		factory, ok = d.controllers.Lookup(ErrorController)
		if !ok {
			return nil, fmt.Errorf("%w: %s not found", ErrNoErrorController, Key(st.Controller))
		}
		st.Resolved = ErrorController
		d.logger.Debug("controller not found, using error controller", zap.String("controller", st.Controller))
	}
	return factory(reg), nil
}

func (d *Dispatcher) handler() ActionHandler {
	h := ActionHandler(func(ctx context.Context, c controller.Controller, action string) (controller.Result, error) {
		run, ok := c.Action(action)
		if !ok {
			return nil, fmt.Errorf("action %q not found", action)
		}
		return run(ctx)
	})

	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := len(d.interceptors) - 1; i >= 0; i-- {
		h = d.interceptors[i](h)
	}
	return h
}

// Dispatch runs one request through the state machine
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request) (State, error) {
	reg := registry.New()
	reg.SetRequest(r)
	if err := r.ParseForm(); err != nil {
		d.logger.Debug("parse form", zap.Error(err))
	}
	reg.SetForm(r.URL.Query(), r.PostForm)

	st, parser := d.Resolve(d.RawRoute(r))
	reg.SetRoute(parser.Variables())

	c, err := d.load(&st, reg)
	if err != nil {
		return st, err
	}

	st.Invoked = st.Action
	if _, ok := c.Action(st.Action); !ok {
		st.Invoked = controller.NotFoundAction
	}
	d.logger.Debug("dispatch",
		zap.String("controller", st.Resolved),
		zap.String("action", st.Invoked))

	ctx := registry.NewContext(r.Context(), reg)
	result, err := d.handler()(ctx, c, st.Invoked)
	if err != nil {
		return st, fmt.Errorf("%s.%s: %w", Key(st.Resolved), st.Invoked, err)
	}

	switch res := result.(type) {
	case *controller.Redirect:
		w.Header().Set("Location", res.URL)
		return st, response.CreateResponse(res.StatusCode()).Write(w)
	case *controller.Halt:
		return st, writeHalt(w, res)
	case controller.Vars:
		return st, d.render(w, reg, c, st, res)
	case nil:
		return st, d.render(w, reg, c, st, nil)
	default:
		return st, fmt.Errorf("unsupported action result %T", result)
	}
}

func (d *Dispatcher) render(w http.ResponseWriter, reg *registry.Registry, c controller.Controller, st State, vars controller.Vars) error {
	if d.templates == nil {
		return ErrNoRenderer
	}
	tpl := d.templates.New(reg)
	for k, v := range vars {
		tpl.Assign(k, v)
	}

	tmpl := c.Template()
	view := controller.View{View: st.Controller, Prefix: st.Action}.Merge(c.View())
	c.Cleanup()

	var buf bytes.Buffer
	err := tpl.Show(&buf, view, tmpl)
	tpl.Cleanup()
	if err != nil {
		return err
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, err = buf.WriteTo(w)
	return err
}

func writeHalt(w http.ResponseWriter, h *controller.Halt) error {
	contentType := h.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	code := h.Code
	if code == 0 {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, err := w.Write([]byte(h.Body))
	return err
}

// ServeHTTP implements http.Handler. Dispatch errors are answered through
// response.Fail; server errors are logged.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := d.Dispatch(w, r)
	if err == nil {
		return
	}
	status := response.StatusOf(err)
	if status >= http.StatusInternalServerError {
		d.logger.Error("dispatch failed",
			zap.String("controller", st.Controller),
			zap.String("action", st.Action),
			zap.Error(err))
	} else {
		d.logger.Debug("action failed", zap.Int("status", status), zap.Error(err))
	}
	response.Fail(w, r, err)
}
