package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: it wires routes and middleware and
// delegates every request to the Server handlers.
func NewRouter(s *Server, authMW func(http.Handler) http.Handler, metrics *Metrics, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if metrics != nil {
		r.Use(metrics.Middleware)
	}
	if log != nil {
		r.Use(requestLogger(log))
	}
	if authMW != nil {
		r.Use(authMW)
	}

	// Health endpoint is used for infra checks and stays unauthenticated.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", s.getLedger)
		r.Get("/archives", s.getArchives)

		r.Post("/ideas", s.createIdea)
		r.Put("/ideas/{id}", s.updateIdea)
		r.Delete("/ideas/{id}", s.deleteIdea)

		r.Post("/gifts", s.createPurchase)
		r.Put("/gifts/{id}", s.updatePurchase)
		r.Delete("/gifts/{id}", s.deletePurchase)
		r.Post("/gifts/{id}/revert-to-idea", s.revertPurchase)

		r.Put("/status/{id}", s.setStatus)
		r.Post("/status/{id}/partial-payment", s.recordPartialPayment)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/members", s.adminCreateMember)
			r.Put("/members/{id}", s.adminUpdateMember)
			r.Put("/members/{id}/password", s.adminSetPassword)
			r.Delete("/members/{id}", s.adminDeleteMember)

			r.Post("/families", s.adminCreateFamily)
			r.Put("/families/{id}", s.adminRenameFamily)
			r.Delete("/families/{id}", s.adminDeleteFamily)

			r.Post("/families/{familyId}/members/{memberId}", s.adminLinkMember)
			r.Delete("/families/{familyId}/members/{memberId}", s.adminUnlinkMember)
		})
	})

	return r
}

func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"requestId": middleware.GetReqID(r.Context()),
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
			}).Info("request handled")
		})
	}
}
