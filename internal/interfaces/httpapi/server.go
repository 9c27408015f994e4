package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
	// Metrics and MetricsHandler are both nil when metrics are disabled.
	Metrics        RequestObserver
	MetricsHandler http.Handler
	// RecalcRatePerSecond <= 0 disables the per-user recalculation limit.
	RecalcRatePerSecond float64
	RecalcRateBurst     int
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	r := &router{
		mux:     http.NewServeMux(),
		metrics: opts.Metrics,
	}
	registerSystemRoutes(r, handler, opts.MetricsHandler)
	registerAuthorizedRoutes(r, handler, verifier, newPrincipalLimiter(opts.RecalcRatePerSecond, opts.RecalcRateBurst))
	registerInternalJobRoutes(r, handler, opts.InternalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(opts.CORSAllowedOrigins, recoverPanic(logger, r.mux))))
}

// router registers handlers on a ServeMux and instruments each one under its pattern.
type router struct {
	mux     *http.ServeMux
	metrics RequestObserver
}

func (r *router) handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, instrumentRoute(r.metrics, pattern, handler))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "http_path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
