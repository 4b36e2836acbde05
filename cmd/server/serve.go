package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/mail"
	"github.com/mmynk/clubportal/internal/middleware"
	"github.com/mmynk/clubportal/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Connect API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var sender mail.Sender
	if cfg.MailEnabled() {
		sender = mail.NewClient(cfg.MailFunctionURL, cfg.MailFunctionKey, cfg.MailFromName, cfg.MailTimeout)
		slog.Info("Email function configured", "url", cfg.MailFunctionURL)
	} else {
		slog.Warn("MAIL_FUNCTION_URL not set, campaigns are disabled")
	}

	compiler := document.NewCompiler(cfg.Currency)
	interceptors := middleware.Interceptors()

	mux := http.NewServeMux()
	mux.Handle(service.NewInvoiceServiceHandler(service.NewInvoiceService(store, compiler), interceptors))
	mux.Handle(service.NewTemplateServiceHandler(service.NewTemplateService(store, compiler), interceptors))
	mux.Handle(service.NewMembershipServiceHandler(service.NewMembershipService(store, compiler), interceptors))
	mux.Handle(service.NewCampaignServiceHandler(service.NewCampaignService(store, sender), interceptors))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Addr, "currency", cfg.Currency)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			return
		}
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

var corsAllowedHeaders = strings.Join([]string{
	"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms", middleware.AdminHeader,
}, ", ")

var corsExposedHeaders = strings.Join([]string{
	"Connect-Protocol-Version", "Connect-Timeout-Ms", service.MissingTokensHeader,
}, ", ")

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		w.Header().Set("Access-Control-Expose-Headers", corsExposedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
