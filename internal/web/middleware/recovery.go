package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/web/response"
)

// Recovery turns a panic into a logged error and a 500 response. A panic
// value that is a *response.HTTPError keeps its status.
func Recovery(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
					zap.Stack("stack"))

				response.Fail(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
