package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/repositories"
)

// DashboardHandler aggregates what each role sees on its landing page.
type DashboardHandler struct {
	users    repositories.UserRepository
	requests repositories.RequestRepository
	issues   repositories.IssueRepository
	logger   *zap.SugaredLogger
}

func NewDashboardHandler(users repositories.UserRepository, requests repositories.RequestRepository, issues repositories.IssueRepository, logger *zap.SugaredLogger) *DashboardHandler {
	return &DashboardHandler{users: users, requests: requests, issues: issues, logger: logger}
}

// TenantDashboard lists pending invitations and the tenant's issues.
func (h *DashboardHandler) TenantDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.GetString(middleware.KeyUID)

	user, err := h.users.GetUser(ctx, uid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load profile"})
		return
	}

	pending, err := h.requests.ListPendingForTenant(ctx, user.Email)
	if err != nil {
		h.logger.Errorw("list pending requests", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}

	issues, err := h.issues.ListIssuesForTenant(ctx, uid)
	if err != nil {
		h.logger.Errorw("list tenant issues", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load issues"})
		return
	}

	open := make([]models.Issue, 0, len(issues))
	resolved := make([]models.Issue, 0)
	for _, issue := range issues {
		if issue.Status == models.IssueResolved {
			resolved = append(resolved, issue)
		} else {
			open = append(open, issue)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"requests":        pending,
		"pending_issues":  open,
		"resolved_issues": resolved,
		"landlord":        user.LandlordEmail,
		"landlord_uid":    user.LandlordUID,
	})
}

// LandlordDashboard lists attached tenants and all of their issues.
func (h *DashboardHandler) LandlordDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.GetString(middleware.KeyUID)

	tenants, err := h.users.ListTenants(ctx, uid)
	if err != nil {
		h.logger.Errorw("list tenants", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tenants"})
		return
	}

	issues, err := h.issues.ListIssuesForLandlord(ctx, uid)
	if err != nil {
		h.logger.Errorw("list landlord issues", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenants": tenants, "issues": issues})
}
