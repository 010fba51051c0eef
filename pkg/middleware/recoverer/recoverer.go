// Package recoverer turns handler panics into the API's JSON error envelope.
package recoverer

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/base62-shortener/pkg/response"
)

func New(logger *slog.Logger) func(http.Handler) http.Handler {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.ErrorContext(
					r.Context(),
					"panic recovered",
					slog.Group(op, slog.Any("panic", rec), slog.String("stack", string(debug.Stack()))),
				)

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
