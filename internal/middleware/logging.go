package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that writes one audit line
// per portal call: the procedure, the acting admin (empty for anonymous
// reads) and the duration.
//
// Rejections the services map to a code (a bad filter, an unknown invoice,
// a template missing tokens) log at warn with the French message the client
// sees and any error metadata, so a refused template edit records which
// tokens were missing. Internal errors log at error with the wrapped cause.
//
// It must run after ActorInterceptor to see the admin ID.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"admin_id", GetAdminID(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.Info("RPC ok", attrs...)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal:
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
				slog.Warn("RPC rejected", append(attrs, metaAttrs(connectErr)...)...)
			default:
				slog.Error("RPC error", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}

// metaAttrs turns error metadata such as Missing-Tokens into snake_case
// log attributes.
func metaAttrs(err *connect.Error) []any {
	var attrs []any
	for key, values := range err.Meta() {
		name := strings.ToLower(strings.ReplaceAll(key, "-", "_"))
		attrs = append(attrs, name, strings.Join(values, ","))
	}
	return attrs
}
