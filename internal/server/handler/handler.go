// Package handler is the thin HTTP layer over the cart service. It decodes
// envelopes and translates errors; business rules stay in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"domcart/internal/domain"
	"domcart/internal/platform/middleware"
	"domcart/internal/server/metrics"
	"domcart/pkg/apierrors"
	"domcart/pkg/httputil"
)

// Service defines the cart operations the handler needs.
type Service interface {
	GetCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error
	Checkout(ctx context.Context, userID string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// Register mounts the cart endpoints. The router wraps these in the auth
// middleware; handlers can assume a user ID is present.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cart", h.handleGetCart)
	r.Post("/api/cart", h.handleReplaceCart)
	r.Post("/api/cart/checkout", h.handleCheckout)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() { h.metrics.ObserveRequest("get_cart", time.Since(start).Seconds()) }()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, apierrors.New(apierrors.CodeUnauthorized, "authentication required"))
		return
	}

	items, err := h.service.GetCart(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "cart fetch failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, domain.CartEnvelope{Cart: items})
}

func (h *Handler) handleReplaceCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() { h.metrics.ObserveRequest("replace_cart", time.Since(start).Seconds()) }()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, apierrors.New(apierrors.CodeUnauthorized, "authentication required"))
		return
	}

	envelope, err := httputil.DecodeJSON[domain.CartEnvelope](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.ReplaceCart(ctx, userID, envelope.Cart); err != nil {
		h.logger.ErrorContext(ctx, "cart replace failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() { h.metrics.ObserveRequest("checkout", time.Since(start).Seconds()) }()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, apierrors.New(apierrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Checkout(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "checkout failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
