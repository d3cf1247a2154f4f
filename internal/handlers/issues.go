package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/classifier"
	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
	"tenant-portal/internal/telemetry"
)

const maxPhotoSize = 10 << 20

// Advisor produces the advice letter and cure period for an issue.
type Advisor interface {
	Advice(ctx context.Context, tenant, state, label string) string
	CureDays(ctx context.Context, state, label string) int
}

// Classifier labels an uploaded photo.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (classifier.Prediction, error)
}

// PhotoStore archives uploaded photos.
type PhotoStore interface {
	Save(ctx context.Context, contentType string, data []byte) (string, error)
	Owns(url string) bool
}

// IssueHandler serves issue reporting for tenants.
type IssueHandler struct {
	issues     repositories.IssueRepository
	users      repositories.UserRepository
	advisor    Advisor
	classifier Classifier
	photos     PhotoStore
	emitter    *telemetry.Emitter
	logger     *zap.SugaredLogger
}

func NewIssueHandler(issues repositories.IssueRepository, users repositories.UserRepository, advisor Advisor, cls Classifier, photos PhotoStore, emitter *telemetry.Emitter, logger *zap.SugaredLogger) *IssueHandler {
	return &IssueHandler{
		issues:     issues,
		users:      users,
		advisor:    advisor,
		classifier: cls,
		photos:     photos,
		emitter:    emitter,
		logger:     logger,
	}
}

// ClassifyPhoto labels an uploaded image and archives it.
func (h *IssueHandler) ClassifyPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read file"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file is empty"})
		return
	}
	if len(data) > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file too large"})
		return
	}

	ctx := c.Request.Context()
	photoURL := ""
	if h.photos != nil {
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		if photoURL, err = h.photos.Save(ctx, contentType, data); err != nil {
			// classification still works without the archive copy
			h.logger.Warnw("photo archive failed", "uid", c.GetString(middleware.KeyUID), "error", err)
			photoURL = ""
		}
	}

	prediction, err := h.classifier.Classify(ctx, data)
	if err != nil {
		h.logger.Warnw("classification failed", "uid", c.GetString(middleware.KeyUID), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "classification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"label":      prediction.Label,
		"confidence": prediction.Confidence,
		"photo_url":  photoURL,
	})
}

// CreateIssue records a new issue with generated advice and cure period.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req struct {
		Label    string `json:"label"`
		PhotoURL string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing label"})
		return
	}
	// only photos archived by ClassifyPhoto may be attached
	photoURL := strings.TrimSpace(req.PhotoURL)
	if photoURL != "" && (h.photos == nil || !h.photos.Owns(photoURL)) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown photo_url"})
		return
	}

	ctx := c.Request.Context()
	uid := c.GetString(middleware.KeyUID)
	user, err := h.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user data not found"})
			return
		}
		h.logger.Errorw("load user for issue", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load user"})
		return
	}
	if user.State == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "set your state in your profile first"})
		return
	}

	advice := h.advisor.Advice(ctx, user.DisplayName(), user.State, label)
	days := h.advisor.CureDays(ctx, user.State, label)

	issue, err := h.issues.CreateIssue(ctx, models.Issue{
		Label:     label,
		TenantUID: uid,
		Status:    models.IssuePending,
		AIAdvice:  advice,
		Days:      days,
		PhotoURL:  photoURL,
	})
	if err != nil {
		h.logger.Errorw("store issue", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to store issue"})
		return
	}

	h.emitter.Event(ctx, telemetry.IssueCreated, requestIDFromContext(c), &uid, gin.H{
		"issue_id":     issue.ID,
		"label":        issue.Label,
		"days":         issue.Days,
		"landlord_uid": user.LandlordUID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      issue.ID,
		"label":   issue.Label,
		"tenant":  issue.TenantUID,
		"days":    issue.Days,
	})
}

// ResolveIssue marks the caller's pending issue as resolved.
func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	issueID, err := strconv.Atoi(c.Param("issue_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return
	}

	uid := c.GetString(middleware.KeyUID)
	issue, err := h.issues.ResolveIssue(c.Request.Context(), issueID, uid)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
		case errors.Is(err, repositories.ErrIssueNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your issue"})
		case errors.Is(err, repositories.ErrIssueAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "issue already resolved"})
		default:
			h.logger.Errorw("resolve issue", "issue_id", issueID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve issue"})
		}
		return
	}

	h.emitter.Event(c.Request.Context(), telemetry.IssueResolved, requestIDFromContext(c), &uid, gin.H{"issue_id": issue.ID})
	c.JSON(http.StatusOK, gin.H{"success": true, "issue": issue})
}

// DownloadReport returns the advice letter as a text attachment.
func (h *IssueHandler) DownloadReport(c *gin.Context) {
	issueID, err := strconv.Atoi(c.Param("issue_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return
	}

	issue, err := h.issues.GetIssue(c.Request.Context(), issueID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrIssueNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "issue not found"})
		return
	}
	if issue.TenantUID != c.GetString(middleware.KeyUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your issue"})
		return
	}
	if issue.AIAdvice == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no advice available for this issue"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="legal_report.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(issue.AIAdvice))
}
