package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/facturio/facturio/pkg/logger"
	"github.com/facturio/facturio/pkg/pacqueue"
)

// Check verifies one dependency (database ping, redis ping).
type Check func(ctx context.Context) error

// Router builds the operational endpoints. queue may be nil when the process
// runs without an outbound queue; /queuez then returns 404.
func Router(log *slog.Logger, queue *pacqueue.Queue, checks ...Check) chi.Router {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", readinessHandler(log, checks))
	if queue != nil {
		r.Get("/queuez", queueHandler(log, queue))
	}

	return r
}

func readinessHandler(log *slog.Logger, checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}

func queueHandler(log *slog.Logger, queue *pacqueue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(queue.Metrics()); err != nil {
			log.ErrorContext(r.Context(), "failed to encode queue metrics", logger.Error(err))
		}
	}
}
