package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/clubportal/internal/metrics"
)

func TestActorInterceptor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"header set", " admin-7 ", "admin-7"},
		{"header missing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				got = GetAdminID(ctx)
				return nil, nil
			})

			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set(AdminHeader, tt.header)
			}
			if _, err := ActorInterceptor()(next)(context.Background(), req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("admin ID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricsInterceptorCountsCodes(t *testing.T) {
	failing := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	// A bare request has an empty procedure.
	counter := metrics.RPCRequests.WithLabelValues("", "not_found")
	before := testutil.ToFloat64(counter)

	_, err := MetricsInterceptor()(failing)(context.Background(), connect.NewRequest(&struct{}{}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not_found to pass through, got %v", err)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&struct{ OK bool }{OK: true}), nil
	})

	resp, err := LoggingInterceptor()(next)(WithAdminID(context.Background(), "admin-1"), connect.NewRequest(&struct{}{}))
	if err != nil || resp == nil {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}
}

func TestLoggingInterceptorRecordsRejections(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name string
		err  func() error
		want []string
	}{
		{
			name: "template missing tokens",
			err: func() error {
				cerr := connect.NewError(connect.CodeFailedPrecondition, errors.New("le modèle ne contient pas les balises obligatoires"))
				cerr.Meta().Set("Missing-Tokens", "total,items")
				return cerr
			},
			want: []string{"level=WARN", "msg=\"RPC rejected\"", "admin_id=admin-1", "code=failed_precondition", "missing_tokens=total,items"},
		},
		{
			name: "internal failure",
			err:  func() error { return errors.New("disk full") },
			want: []string{"level=ERROR", "msg=\"RPC error\"", "admin_id=admin-1", "error=\"disk full\""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return nil, tt.err()
			})
			if _, err := LoggingInterceptor()(next)(WithAdminID(context.Background(), "admin-1"), connect.NewRequest(&struct{}{})); err == nil {
				t.Fatal("expected the error to pass through")
			}
			line := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("log line missing %q: %s", w, line)
				}
			}
		})
	}
}
