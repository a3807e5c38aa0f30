package model

import (
	"context"

	"github.com/prodigyview/helium/internal/orm/condition"
)

// Operation names a public model operation
type Operation string

const (
	OpCheckSchema Operation = "checkSchema"
	OpValidate    Operation = "validate"
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpFirst       Operation = "first"
	OpFind        Operation = "find"
	OpSync        Operation = "sync"
)

// Invocation carries the arguments and result of one operation through the
// interceptor chain. Interceptors may rewrite Data, Spec and Options before
// calling next, and inspect Result after.
type Invocation struct {
	Operation Operation
	Model     *Model
	Data      map[string]any
	Spec      *condition.Spec
	// Options points at the operation's options struct, e.g. *CreateOptions
	Options any
	// Result is set by the operation: bool, int64 or *Results
	Result any
}

// Handler executes an operation
type Handler func(ctx context.Context, inv *Invocation) error

// Interceptor wraps a Handler
type Interceptor func(next Handler) Handler

// chain wraps h so that the first interceptor runs outermost
func chain(h Handler, interceptors []Interceptor) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		h = interceptors[i](h)
	}
	return h
}

// Only restricts an interceptor to the listed operations
func Only(ic Interceptor, ops ...Operation) Interceptor {
	return func(next Handler) Handler {
		wrapped := ic(next)
		return func(ctx context.Context, inv *Invocation) error {
			for _, op := range ops {
				if inv.Operation == op {
					return wrapped(ctx, inv)
				}
			}
			return next(ctx, inv)
		}
	}
}
