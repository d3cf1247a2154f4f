package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tenant-portal/internal/models"
)

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrIssueNotOwned        = errors.New("issue belongs to another tenant")
	ErrIssueAlreadyResolved = errors.New("issue already resolved")
)

// IssueRepository defines persistence for reported issues.
type IssueRepository interface {
	CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error)
	GetIssue(ctx context.Context, issueID int) (models.Issue, error)
	ListIssuesForTenant(ctx context.Context, tenantUID string) ([]models.Issue, error)
	ListIssuesForLandlord(ctx context.Context, landlordUID string) ([]models.Issue, error)
	ResolveIssue(ctx context.Context, issueID int, tenantUID string) (models.Issue, error)
}

// IssueRepo is a sqlx-backed repository.
type IssueRepo struct {
	db *sqlx.DB
}

// NewIssueRepo constructs IssueRepo.
func NewIssueRepo(db *sqlx.DB) *IssueRepo {
	return &IssueRepo{db: db}
}

const issueColumns = `id, label, tenant_uid, status, ai_advice, days, photo_url, created_at`

// CreateIssue appends a pending issue.
func (r *IssueRepo) CreateIssue(ctx context.Context, issue models.Issue) (models.Issue, error) {
	var created models.Issue
	err := r.db.GetContext(ctx, &created, `INSERT INTO issues (label, tenant_uid, status, ai_advice, days, photo_url)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+issueColumns,
		issue.Label, issue.TenantUID, models.IssuePending, issue.AIAdvice, issue.Days, issue.PhotoURL)
	return created, err
}

// GetIssue retrieves a single issue.
func (r *IssueRepo) GetIssue(ctx context.Context, issueID int) (models.Issue, error) {
	var issue models.Issue
	err := r.db.GetContext(ctx, &issue, `SELECT `+issueColumns+` FROM issues WHERE id=$1`, issueID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Issue{}, ErrIssueNotFound
	}
	return issue, err
}

// ListIssuesForTenant returns every issue the tenant reported, newest first.
func (r *IssueRepo) ListIssuesForTenant(ctx context.Context, tenantUID string) ([]models.Issue, error) {
	issues := []models.Issue{}
	err := r.db.SelectContext(ctx, &issues, `SELECT `+issueColumns+` FROM issues WHERE tenant_uid=$1 ORDER BY created_at DESC`, tenantUID)
	return issues, err
}

// ListIssuesForLandlord returns the issues of every attached tenant,
// annotated with the tenant e-mail.
func (r *IssueRepo) ListIssuesForLandlord(ctx context.Context, landlordUID string) ([]models.Issue, error) {
	issues := []models.Issue{}
	err := r.db.SelectContext(ctx, &issues, `SELECT i.id, i.label, i.tenant_uid, i.status, i.ai_advice, i.days, i.photo_url, i.created_at,
            lt.email AS tenant_email
        FROM issues i
        JOIN landlord_tenants lt ON lt.tenant_uid = i.tenant_uid
        WHERE lt.landlord_uid=$1
        ORDER BY i.created_at DESC`, landlordUID)
	return issues, err
}

// ResolveIssue moves an issue from pending to resolved. Only the owning
// tenant may do so and the transition never runs backwards.
func (r *IssueRepo) ResolveIssue(ctx context.Context, issueID int, tenantUID string) (models.Issue, error) {
	issue, err := r.GetIssue(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if issue.TenantUID != tenantUID {
		return models.Issue{}, ErrIssueNotOwned
	}
	if issue.Status == models.IssueResolved {
		return models.Issue{}, ErrIssueAlreadyResolved
	}

	var resolved models.Issue
	err = r.db.GetContext(ctx, &resolved, `UPDATE issues SET status=$3
        WHERE id=$1 AND tenant_uid=$2 AND status=$4 RETURNING `+issueColumns,
		issueID, tenantUID, models.IssueResolved, models.IssuePending)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Issue{}, ErrIssueAlreadyResolved
	}
	return resolved, err
}
