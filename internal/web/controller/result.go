package controller

import "net/http"

// Result is what an action returns: Vars, *Redirect or *Halt
type Result interface {
	isResult()
}

// Vars are assigned to the template before the view is rendered
type Vars map[string]any

// Redirect sends the client elsewhere; rendering is skipped
type Redirect struct {
	URL string
	// Code defaults to 302
	Code int
}

// Halt writes Body with Code and ends the dispatch without rendering
type Halt struct {
	Code        int
	Body        string
	ContentType string
}

func (Vars) isResult()      {}
func (*Redirect) isResult() {}
func (*Halt) isResult()     {}

// StatusCode returns the redirect status
func (r *Redirect) StatusCode() int {
	if r.Code == 0 {
		return http.StatusFound
	}
	return r.Code
}
