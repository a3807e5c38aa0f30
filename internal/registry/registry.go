// Package registry implements the request-scoped key/value context shared by
// the dispatcher, controllers, models and templates.
//
// A Registry is created at the start of a dispatch and discarded at its end.
// It is not safe for concurrent use; the last writer of a key wins.
package registry

import (
	"net/http"
	"net/url"
	"sort"
)

// Well-known keys
const (
	KeyErrors  = "errors"
	KeyRoute   = "route"
	KeyRequest = "request"
	KeyPost    = "post"
	KeyGet     = "get"
)

// Registry is a typed key/value bag
type Registry struct {
	vars map[string]Value
}

// New creates an empty registry
func New() *Registry {
	return &Registry{vars: make(map[string]Value)}
}

// Set stores v under key
func (r *Registry) Set(key string, v Value) {
	r.vars[key] = v
}

// Get returns the value under key
func (r *Registry) Get(key string) (Value, bool) {
	v, ok := r.vars[key]
	return v, ok
}

// Delete removes key
func (r *Registry) Delete(key string) {
	delete(r.vars, key)
}

// Keys returns the registered keys in sorted order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.vars))
	for k := range r.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetErrors publishes validation errors
func (r *Registry) SetErrors(errs map[string][]string) {
	r.Set(KeyErrors, Errors(errs))
}

// Errors returns the last published validation errors
func (r *Registry) Errors() map[string][]string {
	v, ok := r.Get(KeyErrors)
	if !ok {
		return nil
	}
	errs, _ := v.AsErrors()
	return errs
}

// SetRoute stores the resolved route variables
func (r *Registry) SetRoute(vars map[string]string) {
	m := make(map[string]any, len(vars))
	for k, v := range vars {
		m[k] = v
	}
	r.Set(KeyRoute, Map(m))
}

// Route returns the resolved route variables
func (r *Registry) Route() map[string]string {
	v, ok := r.Get(KeyRoute)
	if !ok {
		return nil
	}
	m, _ := v.AsMap()
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

// SetRequest stores the HTTP request being dispatched
func (r *Registry) SetRequest(req *http.Request) {
	r.Set(KeyRequest, Object(req))
}

// Request returns the HTTP request being dispatched, or nil
func (r *Registry) Request() *http.Request {
	v, ok := r.Get(KeyRequest)
	if !ok {
		return nil
	}
	o, _ := v.AsObject()
	req, _ := o.(*http.Request)
	return req
}

// SetForm stores query and post values under the get and post keys
func (r *Registry) SetForm(query, post url.Values) {
	r.Set(KeyGet, Map(flatten(query)))
	r.Set(KeyPost, Map(flatten(post)))
}

// Post returns the submitted form values
func (r *Registry) Post() map[string]any {
	v, _ := r.Get(KeyPost)
	m, _ := v.AsMap()
	return m
}

// Query returns the query string values
func (r *Registry) Query() map[string]any {
	v, _ := r.Get(KeyGet)
	m, _ := v.AsMap()
	return m
}

func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
