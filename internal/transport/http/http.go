package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
	"github.com/yashraj9595/zyntherraa/order/internal/service/services/ordersvc"
	addtrackingevent "github.com/yashraj9595/zyntherraa/order/internal/transport/http/add_tracking_event"
	assigntrackingnumber "github.com/yashraj9595/zyntherraa/order/internal/transport/http/assign_tracking_number"
	confirmdelivery "github.com/yashraj9595/zyntherraa/order/internal/transport/http/confirm_delivery"
	confirmpayment "github.com/yashraj9595/zyntherraa/order/internal/transport/http/confirm_payment"
	createorder "github.com/yashraj9595/zyntherraa/order/internal/transport/http/create_order"
	deleteorder "github.com/yashraj9595/zyntherraa/order/internal/transport/http/delete_order"
	getorder "github.com/yashraj9595/zyntherraa/order/internal/transport/http/get_order"
	listorders "github.com/yashraj9595/zyntherraa/order/internal/transport/http/list_orders"
	markrefundprocessed "github.com/yashraj9595/zyntherraa/order/internal/transport/http/mark_refund_processed"
	recordrefund "github.com/yashraj9595/zyntherraa/order/internal/transport/http/record_refund"
	setstatus "github.com/yashraj9595/zyntherraa/order/internal/transport/http/set_status"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/auth"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/metrics"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/trace"
	"github.com/yashraj9595/zyntherraa/order/pkg/logger"
)

type service interface {
	CreateOrder(ctx context.Context, c caller.Caller, in ordersvc.CreateOrderInput) (*order.Order, error)
	FindByID(ctx context.Context, c caller.Caller, id string) (*order.Order, error)
	FindByUser(ctx context.Context, c caller.Caller, userRef string, page order.Page) ([]order.Order, error)
	FindAll(ctx context.Context, c caller.Caller, filter order.QueryOrdersModel) ([]order.Order, error)
	ConfirmPayment(ctx context.Context, c caller.Caller, id string, expectedVersion int64, result payment.Result) (*order.Order, error)
	ConfirmDelivery(ctx context.Context, c caller.Caller, id string, expectedVersion int64) (*order.Order, error)
	SetStatus(ctx context.Context, c caller.Caller, id string, expectedVersion int64, target order.Status) (*order.Order, error)
	AssignTrackingNumber(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		carrier string,
		estimatedDelivery *time.Time,
	) (*order.Order, error)
	AddTrackingEvent(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		status, location, description string,
	) (*order.Order, error)
	RecordRefund(
		ctx context.Context,
		c caller.Caller,
		id string,
		expectedVersion int64,
		amount decimal.Decimal,
		externalID, status, notes string,
	) (*order.Order, error)
	MarkRefundProcessed(ctx context.Context, c caller.Caller, id string, expectedVersion int64) (*order.Order, error)
	DeleteOrder(ctx context.Context, c caller.Caller, id string) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	auth    *auth.Authenticator
}

func NewHTTPTransport(service service, authenticator *auth.Authenticator) *HTTPTransport {
	router := newRouter("order-svc")
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		auth:    authenticator,
	}
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", healthz)
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.Route("/api/orders", func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Post("/", h.createOrder)
		r.Get("/", h.listAll)
		r.Get("/mine", h.listMine)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Delete("/", h.deleteOrder)
			r.Put("/pay", h.confirmPayment)
			r.Put("/deliver", h.confirmDelivery)
			r.Put("/status", h.setStatus)
			r.Post("/tracking-number", h.assignTrackingNumber)
			r.Post("/tracking", h.addTrackingEvent)
			r.Post("/refund", h.recordRefund)
			r.Put("/refund/processed", h.markRefundProcessed)
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listAll(w http.ResponseWriter, r *http.Request) {
	listorders.ListAll(w, r, h.service)
}

func (h *HTTPTransport) listMine(w http.ResponseWriter, r *http.Request) {
	listorders.ListMine(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.service)
}

func (h *HTTPTransport) confirmPayment(w http.ResponseWriter, r *http.Request) {
	confirmpayment.ConfirmPayment(w, r, h.service)
}

func (h *HTTPTransport) confirmDelivery(w http.ResponseWriter, r *http.Request) {
	confirmdelivery.ConfirmDelivery(w, r, h.service)
}

func (h *HTTPTransport) setStatus(w http.ResponseWriter, r *http.Request) {
	setstatus.SetStatus(w, r, h.service)
}

func (h *HTTPTransport) assignTrackingNumber(w http.ResponseWriter, r *http.Request) {
	assigntrackingnumber.AssignTrackingNumber(w, r, h.service)
}

func (h *HTTPTransport) addTrackingEvent(w http.ResponseWriter, r *http.Request) {
	addtrackingevent.AddTrackingEvent(w, r, h.service)
}

func (h *HTTPTransport) recordRefund(w http.ResponseWriter, r *http.Request) {
	recordrefund.RecordRefund(w, r, h.service)
}

func (h *HTTPTransport) markRefundProcessed(w http.ResponseWriter, r *http.Request) {
	markrefundprocessed.MarkRefundProcessed(w, r, h.service)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newRouter(serviceName string) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(trace.NewTraceMiddleware(serviceName))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)
	router.Use(metrics.NewMetricsMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
