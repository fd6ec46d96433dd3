package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"github.com/imrishuroy/bonzicart-checkout/internal/service"
	"github.com/imrishuroy/bonzicart-checkout/internal/sessions"
	"github.com/imrishuroy/bonzicart-checkout/internal/validation"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader deduplicates place-order requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// HandlerConfig groups dependencies for the checkout handler.
type HandlerConfig struct {
	Checkout *service.Checkout
	// OrderTimeout bounds how long a synchronous place-order request waits
	// for the submission to settle.
	OrderTimeout time.Duration
}

// RegisterCheckoutRoutes registers routes for the checkout API.
func RegisterCheckoutRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &checkoutHandler{svc: cfg.Checkout, v: validation.New(), orderTimeout: cfg.OrderTimeout}
	if h.orderTimeout <= 0 {
		h.orderTimeout = 30 * time.Second
	}

	r.GET("/checkout/options", h.options)

	g := r.Group("/checkout/sessions")
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.GET("/:id/quote", h.quote)
	g.PATCH("/:id/fields", h.setFields)
	g.PUT("/:id/gst", h.setGST)
	g.POST("/:id/tabs/:section", h.selectTab)
	g.POST("/:id/goto/:section", h.goTo)
	g.POST("/:id/continue", h.step((*service.Checkout).Continue))
	g.POST("/:id/back", h.step((*service.Checkout).Back))
	g.POST("/:id/summary-toggle", h.step((*service.Checkout).ToggleSummary))
	g.POST("/:id/coupon", h.applyCoupon)
	g.DELETE("/:id/coupon", h.step((*service.Checkout).RemoveCoupon))
	g.POST("/:id/orders", h.placeOrder)
}

type checkoutHandler struct {
	svc          *service.Checkout
	v            *validatorv10.Validate
	orderTimeout time.Duration
}

func (h *checkoutHandler) options(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Options())
}

func (h *checkoutHandler) create(c *gin.Context) {
	v, err := h.svc.Create(c.Request.Context())
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.Header("Location", fmt.Sprintf("/checkout/sessions/%s", v.Session.ID))
	c.JSON(http.StatusCreated, v)
}

func (h *checkoutHandler) get(c *gin.Context) {
	v, err := h.svc.View(c.Request.Context(), c.Param("id"))
	respond(c, v, err)
}

func (h *checkoutHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *checkoutHandler) quote(c *gin.Context) {
	q, err := h.svc.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *checkoutHandler) setFields(c *gin.Context) {
	var req validation.FieldsRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}
	v, err := h.svc.SetFields(c.Request.Context(), c.Param("id"), req.Fields)
	respond(c, v, err)
}

func (h *checkoutHandler) setGST(c *gin.Context) {
	var req validation.GSTRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	v, err := h.svc.SetHasGST(c.Request.Context(), c.Param("id"), *req.Enabled)
	respond(c, v, err)
}

func (h *checkoutHandler) selectTab(c *gin.Context) {
	v, err := h.svc.SelectTab(c.Request.Context(), c.Param("id"), c.Param("section"))
	respond(c, v, err)
}

func (h *checkoutHandler) goTo(c *gin.Context) {
	v, err := h.svc.GoTo(c.Request.Context(), c.Param("id"), c.Param("section"))
	respond(c, v, err)
}

func (h *checkoutHandler) applyCoupon(c *gin.Context) {
	var req validation.CouponRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	v, err := h.svc.ApplyCoupon(c.Request.Context(), c.Param("id"), req.Code)
	respond(c, v, err)
}

// step adapts a body-less session operation.
func (h *checkoutHandler) step(op func(*service.Checkout, context.Context, string) (*service.View, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := op(h.svc, c.Request.Context(), c.Param("id"))
		respond(c, v, err)
	}
}

func (h *checkoutHandler) placeOrder(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)

	p, err := h.svc.PlaceOrder(ctx, c.Param("id"), key, c.GetHeader(logging.RequestIDHeader))
	if err != nil {
		writeError(c, err, nil)
		return
	}

	if p.Replay != nil {
		replay(c, p.Replay)
		return
	}

	if c.Query("async") == "true" {
		c.JSON(http.StatusAccepted, p.View)
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.orderTimeout)
	defer cancel()
	resp, err := p.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// still settling in the background; the session shows the result
			c.JSON(http.StatusAccepted, p.View)
			return
		}
		writeError(c, err, nil)
		return
	}
	c.Header("Location", fmt.Sprintf("/checkout/sessions/%s", resp.SessionID))
	c.JSON(http.StatusCreated, resp)
}

// replay answers a repeated place-order request from its idempotency record.
func replay(c *gin.Context, rec *idempotency.Record) {
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"orderId": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "sessionId": rec.SessionID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}

// respond writes the view, attaching it to error responses that carry one
// (a refused transition still changes what the page shows).
func respond(c *gin.Context, v *service.View, err error) {
	if err != nil {
		writeError(c, err, v)
		return
	}
	c.JSON(http.StatusOK, v)
}

// writeError maps service errors to HTTP statuses.
func writeError(c *gin.Context, err error, v *service.View) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": "validation_failed", "section": verr.Section, "errors": verr.Errors}
		if v != nil {
			body["view"] = v
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, sessions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
	case errors.Is(err, checkout.ErrUnknownField),
		errors.Is(err, checkout.ErrInvalidValue),
		errors.Is(err, checkout.ErrUnknownSection),
		errors.Is(err, checkout.ErrEmptyCoupon),
		errors.Is(err, checkout.ErrUnknownCoupon):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "msg": err.Error()})
	case errors.Is(err, sessions.ErrVersionConflict),
		errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, checkout.ErrSubmissionCanceled),
		errors.Is(err, checkout.ErrNotAtPayment),
		errors.Is(err, service.ErrNoAdjacentSection),
		errors.Is(err, service.ErrIdempotencyKeyReused):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "msg": err.Error()})
	default:
		logging.Error("checkout request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
