package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/middleware"
	"tenant-portal/internal/repositories"
	"tenant-portal/internal/telemetry"
)

// RequestHandler serves the landlord/tenant attachment flow.
type RequestHandler struct {
	requests repositories.RequestRepository
	emitter  *telemetry.Emitter
	logger   *zap.SugaredLogger
}

func NewRequestHandler(requests repositories.RequestRepository, emitter *telemetry.Emitter, logger *zap.SugaredLogger) *RequestHandler {
	return &RequestHandler{requests: requests, emitter: emitter, logger: logger}
}

// SendRequest lets a landlord invite a tenant by e-mail.
func (h *RequestHandler) SendRequest(c *gin.Context) {
	var req struct {
		TenantEmail string `json:"tenant_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenantEmail := strings.ToLower(strings.TrimSpace(req.TenantEmail))
	if tenantEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant email is required"})
		return
	}

	ctx := c.Request.Context()
	landlordUID := c.GetString(middleware.KeyUID)
	landlordEmail := c.GetString(middleware.KeyEmail)
	if strings.EqualFold(tenantEmail, landlordEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot invite yourself"})
		return
	}

	created, err := h.requests.CreateRequest(ctx, tenantEmail, landlordEmail, landlordUID)
	if err != nil {
		h.logger.Errorw("create request", "landlord_uid", landlordUID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	// consumers of this event deliver the invitation e-mail
	h.emitter.Event(ctx, telemetry.RequestCreated, requestIDFromContext(c), &landlordUID, gin.H{
		"request_id":     created.ID,
		"tenant_email":   created.TenantEmail,
		"landlord_email": created.LandlordEmail,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "request": created})
}

// AcceptRequest links the calling tenant to the requesting landlord.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	requestID := c.Param("request_id")
	tenantUID := c.GetString(middleware.KeyUID)

	accepted, err := h.requests.AcceptRequest(c.Request.Context(), requestID, tenantUID, c.GetString(middleware.KeyEmail))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, repositories.ErrRequestNotForTenant):
			c.JSON(http.StatusForbidden, gin.H{"error": "request is not addressed to you"})
		case errors.Is(err, repositories.ErrRequestNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "request already accepted"})
		case errors.Is(err, repositories.ErrRequestNoLandlord):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "request has no landlord"})
		default:
			h.logger.Errorw("accept request", "request_id", requestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept request"})
		}
		return
	}

	h.emitter.Event(c.Request.Context(), telemetry.RequestAccepted, requestIDFromContext(c), &tenantUID, gin.H{
		"request_id":   accepted.ID,
		"landlord_uid": accepted.LandlordUID,
		"tenant_uid":   tenantUID,
	})
	h.emitter.Audit(c.Request.Context(), "INFO", "tenant attached to landlord "+accepted.LandlordEmail, requestIDFromContext(c), &tenantUID)

	c.JSON(http.StatusOK, gin.H{"success": true, "request": accepted})
}
