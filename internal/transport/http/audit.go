package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/auditlog"
	audithistory "github.com/yashraj9595/zyntherraa/order/internal/transport/http/audit_history"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/auth"
)

type auditService interface {
	History(ctx context.Context, orderID string) ([]auditlog.AuditLogOrder, error)
}

// AuditHTTPTransport serves the audit trail next to the audit consumer.
type AuditHTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service auditService
	auth    *auth.Authenticator
}

func NewAuditHTTPTransport(service auditService, authenticator *auth.Authenticator) *AuditHTTPTransport {
	router := newRouter("audit-consumer")
	server := newServer(router)

	return &AuditHTTPTransport{
		server:  server,
		router:  router,
		service: service,
		auth:    authenticator,
	}
}

// Handler exposes the router, mainly for tests.
func (h *AuditHTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *AuditHTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *AuditHTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the AuditHTTPTransport.
func (h *AuditHTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", healthz)
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.With(h.auth.Middleware).Get("/api/orders/{id}/audit", h.auditHistory)
}

func (h *AuditHTTPTransport) auditHistory(w http.ResponseWriter, r *http.Request) {
	audithistory.AuditHistory(w, r, h.service)
}
