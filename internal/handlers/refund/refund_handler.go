package refund

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
	"github.com/palmgrove/refund-service/internal/middleware"
	"github.com/palmgrove/refund-service/pkg/observability"
)

// Handler exposes the refund workflow over HTTP
type Handler struct {
	service ports.RefundService
	logger  ports.Logger
}

// NewHandler creates a new refund handler
func NewHandler(service ports.RefundService, logger ports.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the refund routes under /api/refunds
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	refunds := r.Group("/api/refunds")
	{
		refunds.POST("", h.Create)
		refunds.GET("", h.List)
		refunds.GET("/stats", h.Stats)
		refunds.GET("/pending", h.ListPending)
		refunds.GET("/reference/:reference", h.GetByReference)
		refunds.GET("/status/:status", h.ListByStatus)
		refunds.GET("/user/:username", h.ListByUser)
		refunds.GET("/payment/:paymentId", h.ListByPayment)
		refunds.GET("/booking/:bookingId", h.ListByBooking)
		refunds.GET("/event-booking/:eventBookingId", h.ListByEventBooking)
		refunds.GET("/:id", h.GetByID)
		refunds.PUT("/:id", h.Update)
		refunds.POST("/:id/cancel", h.Cancel)
		refunds.POST("/:id/approve", h.Approve)
		refunds.POST("/:id/reject", h.Reject)
		refunds.POST("/:id/process", h.Process)
		refunds.POST("/:id/complete", h.Complete)
	}
}

// Create opens a new refund request against a payment
func (h *Handler) Create(c *gin.Context) {
	var req createRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	refundType, ok := domain.ParseRefundType(req.RefundType)
	if !ok {
		respondBadRequest(c, "invalid refund type: "+req.RefundType)
		return
	}

	requestedBy := strings.TrimSpace(req.RequestedBy)
	if requestedBy == "" {
		requestedBy = middleware.Actor(c)
	}

	created, err := h.service.Create(c.Request.Context(), ports.CreateRefundRequest{
		PaymentID:   req.PaymentID,
		Amount:      req.RefundAmount,
		Type:        refundType,
		Reason:      strings.TrimSpace(req.RefundReason),
		Method:      strings.TrimSpace(req.RefundMethod),
		Notes:       strings.TrimSpace(req.Notes),
		RequestedBy: requestedBy,
	})
	if err != nil {
		observability.RecordRefundOperation("create", "error")
		respondError(c, err)
		return
	}

	observability.RecordRefundOperation("create", string(created.Status))
	observability.RecordRefundAmount(string(created.Type), created.Amount)
	c.JSON(http.StatusCreated, toRefundResponse(created))
}

// GetByID returns a refund with its originating payment
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRefundDetailResponse(detail))
}

// GetByReference returns a refund by its human-readable reference
func (h *Handler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")

	detail, err := h.service.GetByReference(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRefundDetailResponse(detail))
}

// Update applies a partial update to a refund
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	patch := ports.UpdateRefundRequest{
		Method:        req.RefundMethod,
		TransactionID: req.TransactionID,
		AdminNotes:    req.AdminNotes,
		Notes:         req.Notes,
		Amount:        req.RefundAmount,
	}

	if req.RefundStatus != nil {
		status, ok := domain.ParseRefundStatus(*req.RefundStatus)
		if !ok {
			respondBadRequest(c, "invalid refund status: "+*req.RefundStatus)
			return
		}
		patch.Status = &status
	}

	updated, err := h.service.Update(c.Request.Context(), id, patch, middleware.Actor(c))
	if err != nil {
		observability.RecordRefundOperation("update", "error")
		respondError(c, err)
		return
	}

	observability.RecordRefundOperation("update", string(updated.Status))
	c.JSON(http.StatusOK, toRefundResponse(updated))
}

// Cancel cancels a refund and reverts the payment status
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id, middleware.Actor(c)); err != nil {
		observability.RecordRefundOperation("cancel", "error")
		respondError(c, err)
		return
	}

	observability.RecordRefundOperation("cancel", string(domain.RefundStatusCancelled))
	c.JSON(http.StatusOK, gin.H{"message": "refund cancelled"})
}

// Approve moves a refund to APPROVED
func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, domain.RefundStatusApproved)
}

// Reject moves a refund to REJECTED
func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, domain.RefundStatusRejected)
}

// Process moves a refund to PROCESSING, optionally recording the payout method
func (h *Handler) Process(c *gin.Context) {
	h.transition(c, domain.RefundStatusProcessing)
}

// Complete moves a refund to COMPLETED
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, domain.RefundStatusCompleted)
}

// transition applies a fixed status change, carrying any optional body fields
func (h *Handler) transition(c *gin.Context, status domain.RefundStatus) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Body is optional on the convenience endpoints
	var req updateRefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	patch := ports.UpdateRefundRequest{
		Status:        &status,
		Method:        req.RefundMethod,
		TransactionID: req.TransactionID,
		AdminNotes:    req.AdminNotes,
		Notes:         req.Notes,
	}

	updated, err := h.service.Update(c.Request.Context(), id, patch, middleware.Actor(c))
	if err != nil {
		observability.RecordRefundOperation("update", "error")
		respondError(c, err)
		return
	}

	observability.RecordRefundOperation("update", string(updated.Status))
	c.JSON(http.StatusOK, toRefundResponse(updated))
}

// List returns all refunds
func (h *Handler) List(c *gin.Context) {
	refunds, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListPending returns refunds awaiting review
func (h *Handler) ListPending(c *gin.Context) {
	refunds, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListByStatus returns refunds in the given status
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := domain.ParseRefundStatus(c.Param("status"))
	if !ok {
		respondBadRequest(c, "invalid refund status: "+c.Param("status"))
		return
	}

	refunds, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListByUser returns refunds requested by the given user
func (h *Handler) ListByUser(c *gin.Context) {
	refunds, err := h.service.ListByUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListByPayment returns all refunds against the given payment
func (h *Handler) ListByPayment(c *gin.Context) {
	id, ok := pathID(c, "paymentId")
	if !ok {
		return
	}

	refunds, err := h.service.ListByPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListByBooking returns refunds linked to the given booking
func (h *Handler) ListByBooking(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	refunds, err := h.service.ListByBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// ListByEventBooking returns refunds linked to the given event booking
func (h *Handler) ListByEventBooking(c *gin.Context) {
	id, ok := pathID(c, "eventBookingId")
	if !ok {
		return
	}

	refunds, err := h.service.ListByEventBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundListResponse(refunds))
}

// Stats returns per-status counts and summed amounts
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}

// pathID parses a numeric path parameter, responding 400 on garbage input
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
