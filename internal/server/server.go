package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/dispatch"
	"github.com/crucial707/oci-dispatch/internal/handlers"
	"github.com/crucial707/oci-dispatch/internal/middleware"
	"github.com/crucial707/oci-dispatch/internal/repo"
)

// Deps are what the serve API reads from. DB may be nil; run and contract routes then answer 503.
type Deps struct {
	DB            *sql.DB
	Groups        []dispatch.Group
	Log           zerolog.Logger
	RatePerMinute int
}

// NewRouter builds the read-only operator API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(d.Log))
	r.Use(middleware.RequestLog(d.Log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if d.RatePerMinute > 0 {
			r.Use(middleware.NewRateLimiter(d.RatePerMinute).Middleware)
		}

		schedule := &handlers.ScheduleHandler{Groups: d.Groups}
		r.Get("/schedule", schedule.GetSchedule)

		if d.DB == nil {
			r.Get("/runs", handlers.Unavailable)
			r.Get("/contracts", handlers.Unavailable)
			r.Get("/contracts/{id}", handlers.Unavailable)
			return
		}
		runs := &handlers.RunHandler{Repo: repo.NewTaskRunRepo(d.DB)}
		contracts := &handlers.ContractHandler{Repo: repo.NewContractRepo(d.DB)}
		r.Get("/runs", runs.ListRuns)
		r.Get("/contracts", contracts.ListContracts)
		r.Get("/contracts/{id}", contracts.GetContract)
	})
	return r
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serve api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
