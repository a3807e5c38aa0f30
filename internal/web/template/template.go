// Package template renders controller views inside layouts. Views live at
// views/<view>/<prefix>.<type>.<ext> and layouts at templates/<prefix>.<type>.<ext>
// under the engine's file system. Views with the "md" extension are executed
// as text templates, converted from markdown and sanitised.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
)

// MarkdownExtension marks views rendered through markdown
const MarkdownExtension = "md"

var (
	// ErrViewNotFound is returned when the view file does not exist
	ErrViewNotFound = errors.New("view not found")
	// ErrLayoutNotFound is returned when the layout file does not exist
	ErrLayoutNotFound = errors.New("layout not found")
)

// Renderer is the per-dispatch template collaborator
type Renderer interface {
	Assign(key string, value any)
	Show(w io.Writer, view controller.View, tmpl controller.Template) error
	Cleanup()
}

// ViewPath returns the file of a view descriptor
func ViewPath(v controller.View) string {
	return path.Join("views", v.View, fmt.Sprintf("%s.%s.%s", v.Prefix, v.Type, v.Extension))
}

// LayoutPath returns the file of a layout descriptor
func LayoutPath(t controller.Template) string {
	return path.Join("templates", fmt.Sprintf("%s.%s.%s", t.Prefix, t.Type, t.Extension))
}

// Engine parses and caches views and layouts
type Engine struct {
	fs     fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy
	funcs  template.FuncMap
	reload bool
	logger *zap.Logger

	mu       sync.RWMutex
	views    map[string]*template.Template
	markdown map[string]*texttemplate.Template
	layouts  map[string]*template.Template
}

// Option configures an Engine
type Option func(*Engine)

// WithFuncs adds template functions to views and layouts
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// WithReload disables the parse cache so edited files are picked up
func WithReload() Option {
	return func(e *Engine) {
		e.reload = true
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine reading from fsys
func NewEngine(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fs:       fsys,
		md:       goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
		funcs:    template.FuncMap{},
		logger:   zap.NewNop(),
		views:    make(map[string]*template.Template),
		markdown: make(map[string]*texttemplate.Template),
		layouts:  make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New returns a template for one dispatch
func (e *Engine) New(reg *registry.Registry) Renderer {
	return &Template{engine: e, registry: reg, vars: make(map[string]any)}
}

func (e *Engine) read(name string, missing error) (string, error) {
	b, err := fs.ReadFile(e.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", missing, name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

// layoutFuncs are placeholders replaced per render
func (e *Engine) layoutFuncs() template.FuncMap {
	funcs := template.FuncMap{
		"content": func() template.HTML { return "" },
	}
	for name, fn := range e.funcs {
		funcs[name] = fn
	}
	return funcs
}

func (e *Engine) htmlTemplate(name string, cache map[string]*template.Template, missing error) (*template.Template, error) {
	if !e.reload {
		e.mu.RLock()
		t, ok := cache[name]
		e.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	src, err := e.read(name, missing)
	if err != nil {
		return nil, err
	}
	t, err := template.New(path.Base(name)).Funcs(e.layoutFuncs()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	if !e.reload {
		e.mu.Lock()
		cache[name] = t
		e.mu.Unlock()
	}
	return t, nil
}

func (e *Engine) markdownTemplate(name string) (*texttemplate.Template, error) {
	if !e.reload {
		e.mu.RLock()
		t, ok := e.markdown[name]
		e.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	src, err := e.read(name, ErrViewNotFound)
	if err != nil {
		return nil, err
	}
	t, err := texttemplate.New(path.Base(name)).Funcs(texttemplate.FuncMap(e.funcs)).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	if !e.reload {
		e.mu.Lock()
		e.markdown[name] = t
		e.mu.Unlock()
	}
	return t, nil
}

// renderView renders the view alone
func (e *Engine) renderView(v controller.View, data map[string]any) (template.HTML, error) {
	if v.Disable {
		return "", nil
	}
	name := ViewPath(v)

	if v.Extension == MarkdownExtension {
		t, err := e.markdownTemplate(name)
		if err != nil {
			return "", err
		}
		var src bytes.Buffer
		if err := t.Execute(&src, data); err != nil {
			return "", fmt.Errorf("execute %s: %w", name, err)
		}
		var out bytes.Buffer
		if err := e.md.Convert(src.Bytes(), &out); err != nil {
			return "", fmt.Errorf("convert %s: %w", name, err)
		}
		return template.HTML(e.policy.SanitizeBytes(out.Bytes())), nil
	}

	t, err := e.htmlTemplate(name, e.views, ErrViewNotFound)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := t.Execute(&out, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return template.HTML(out.String()), nil
}

// Template collects the variables of one dispatch and renders them
type Template struct {
	engine   *Engine
	registry *registry.Registry
	vars     map[string]any
}

// Assign sets a template variable
func (t *Template) Assign(key string, value any) {
	t.vars[key] = value
}

// Registry returns the dispatch registry
func (t *Template) Registry() *registry.Registry {
	return t.registry
}

// Vars returns the assigned variables
func (t *Template) Vars() map[string]any {
	return t.vars
}

// Show renders the view into the layout, or the view alone when the layout is
// disabled. Nothing is written to w when rendering fails.
func (t *Template) Show(w io.Writer, view controller.View, tmpl controller.Template) error {
	content, err := t.engine.renderView(view, t.vars)
	if err != nil {
		return err
	}
	if tmpl.Disable {
		_, err = io.WriteString(w, string(content))
		return err
	}

	name := LayoutPath(tmpl)
	layout, err := t.engine.htmlTemplate(name, t.engine.layouts, ErrLayoutNotFound)
	if err != nil {
		return err
	}
	layout, err = layout.Clone()
	if err != nil {
		return err
	}
	layout.Funcs(template.FuncMap{
		"content": func() template.HTML { return content },
	})

	var out bytes.Buffer
	if err := layout.Execute(&out, t.vars); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	t.engine.logger.Debug("rendered",
		zap.String("view", ViewPath(view)),
		zap.String("layout", name),
		zap.Int("bytes", out.Len()))
	_, err = out.WriteTo(w)
	return err
}

// Cleanup drops the assigned variables
func (t *Template) Cleanup() {
	t.vars = make(map[string]any)
}
