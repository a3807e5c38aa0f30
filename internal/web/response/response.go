// Package response builds the small status responses written by the
// dispatcher for redirects, halts and failures.
package response

import (
	"fmt"
	"net/http"
	"strconv"
)

// Response is a status code with a plain text body
type Response struct {
	Code   int
	Status string
	Body   string
}

// CreateResponse returns the response for code. The body is "<code> <status text>".
func CreateResponse(code int) Response {
	status := http.StatusText(code)
	if status == "" {
		status = "Unknown Status"
	}
	return Response{
		Code:   code,
		Status: status,
		Body:   fmt.Sprintf("%d %s", code, status),
	}
}

// Write sends the response. Headers set on w before the call are kept.
func (r Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/plain; charset=utf-8")
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Code)
	_, err := w.Write([]byte(r.Body))
	return err
}

// String returns the body
func (r Response) String() string {
	return r.Body
}
