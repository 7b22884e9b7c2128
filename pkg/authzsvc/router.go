package authzsvc

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	authzhandlers "github.com/openshift-online/aspen/pkg/handlers"
	"github.com/openshift-online/aspen/pkg/middleware"
)

// NewAPIRouter assembles the main aspensvc listener: the v1 authorization
// API plus liveness/readiness, so a caller only ever needs the one base URL.
// Every v1 route runs behind the caller-identity middleware so handlers can
// recover the principal and account ID from context.
func NewAPIRouter(h *Handlers, health *authzhandlers.HealthHandler, metrics *Metrics, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/live", health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/ready", health.Readiness).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1/accounts/{accountId}").Subrouter()
	v1.Use(middleware.Identity)

	withMetrics := func(route string, handler http.HandlerFunc) http.Handler {
		return metrics.Middleware(route)(handler)
	}

	v1.Handle("/enable", withMetrics("/v1/accounts/{accountId}/enable", h.EnableAccount)).Methods(http.MethodPost)
	v1.Handle("/policies", withMetrics("/v1/accounts/{accountId}/policies", h.CreatePolicy)).Methods(http.MethodPost)
	v1.Handle("/policies/{policyId}", withMetrics("/v1/accounts/{accountId}/policies/{policyId}", h.DeletePolicy)).Methods(http.MethodDelete)
	v1.Handle("/groups", withMetrics("/v1/accounts/{accountId}/groups", h.CreateGroup)).Methods(http.MethodPost)
	v1.Handle("/groups/{groupId}", withMetrics("/v1/accounts/{accountId}/groups/{groupId}", h.DeleteGroup)).Methods(http.MethodDelete)
	v1.Handle("/groups/{groupId}/members", withMetrics("/v1/accounts/{accountId}/groups/{groupId}/members", h.AddGroupMember)).Methods(http.MethodPost)
	v1.Handle("/attachments", withMetrics("/v1/accounts/{accountId}/attachments", h.CreateAttachment)).Methods(http.MethodPost)
	v1.Handle("/attachments/{attachmentId}", withMetrics("/v1/accounts/{accountId}/attachments/{attachmentId}", h.DeleteAttachment)).Methods(http.MethodDelete)
	v1.Handle("/authorize", withMetrics("/v1/accounts/{accountId}/authorize", h.Authorize)).Methods(http.MethodPost)

	loggingWriter := &slogWriter{logger: logger}
	return handlers.CombinedLoggingHandler(loggingWriter, handlers.RecoveryHandler()(router))
}

// NewHealthRouter builds a standalone liveness/readiness listener, for
// platforms (e.g. a Kubernetes probe) that hit a dedicated health port
// rather than the main API port.
func NewHealthRouter(health *authzhandlers.HealthHandler) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/live", health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/ready", health.Readiness).Methods(http.MethodGet)
	return router
}

// slogWriter adapts gorilla/handlers' io.Writer-based access logging to the
// structured logger the rest of the service uses.
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	w.logger.Info("http access", "entry", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
