package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clubportal/internal/metrics"
)

// MetricsInterceptor counts RPCs by procedure and code and records their
// duration.
func MetricsInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			metrics.RPCRequests.WithLabelValues(procedure, code).Inc()
			metrics.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}

// Interceptors returns the interceptor chain every service handler uses.
func Interceptors() connect.Option {
	return connect.WithInterceptors(ActorInterceptor(), LoggingInterceptor(), MetricsInterceptor())
}
