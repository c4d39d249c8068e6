package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"study-helper/api/internal/logger"
)

const shutdownGrace = 10 * time.Second

// StartHTTP serves handler on addr until ctx is cancelled, then shuts down
// gracefully. A nil handler serves only /healthz with healthzBody.
func StartHTTP(ctx context.Context, addr string, handler http.Handler, healthzBody string, log *logger.Logger) error {
	if handler == nil {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(healthzBody))
		})
		handler = mux
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Info("shutting down", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}
