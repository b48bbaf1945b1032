package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerd/offerd/internal/common/httpx"
)

// SetTimeout enforces a deadline on request handling. If the handler does not
// complete within the given duration the client receives a timeout response,
// provided no headers have been written yet.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := httpx.NewResponseWriter(w)
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", rec)
					}
					close(done)
				}()
				next.ServeHTTP(rw, r)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if !rw.Written() {
					(&httpx.Error{
						Description: "request timed out",
						StatusCode:  http.StatusGatewayTimeout,
					}).Send(w)
				}
				log.Ctx(ctx).Error().Msg("request timed out")
			}
		})
	}
}
