package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tenant-portal/internal/models"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrRequestNotForTenant = errors.New("request addressed to another tenant")
	ErrRequestNotPending   = errors.New("request is no longer pending")
	ErrRequestNoLandlord   = errors.New("request has no landlord uid")
)

// RequestRepository defines persistence for attachment requests.
type RequestRepository interface {
	CreateRequest(ctx context.Context, tenantEmail, landlordEmail, landlordUID string) (models.Request, error)
	GetRequest(ctx context.Context, requestID string) (models.Request, error)
	ListPendingForTenant(ctx context.Context, tenantEmail string) ([]models.Request, error)
	AcceptRequest(ctx context.Context, requestID, tenantUID, tenantEmail string) (models.Request, error)
}

// RequestRepo is a sqlx-backed repository.
type RequestRepo struct {
	db *sqlx.DB
}

// NewRequestRepo constructs RequestRepo.
func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `id, tenant_email, landlord_email, landlord_uid, status, created_at`

// CreateRequest stores a pending request.
func (r *RequestRepo) CreateRequest(ctx context.Context, tenantEmail, landlordEmail, landlordUID string) (models.Request, error) {
	var req models.Request
	err := r.db.GetContext(ctx, &req, `INSERT INTO requests (id, tenant_email, landlord_email, landlord_uid, status)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+requestColumns,
		uuid.NewString(), tenantEmail, landlordEmail, landlordUID, models.RequestPending)
	return req, err
}

// GetRequest fetches a request by id.
func (r *RequestRepo) GetRequest(ctx context.Context, requestID string) (models.Request, error) {
	var req models.Request
	err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM requests WHERE id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, ErrRequestNotFound
	}
	return req, err
}

// ListPendingForTenant returns pending requests addressed to the e-mail.
func (r *RequestRepo) ListPendingForTenant(ctx context.Context, tenantEmail string) ([]models.Request, error) {
	reqs := []models.Request{}
	err := r.db.SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM requests
        WHERE lower(tenant_email)=lower($1) AND status=$2 ORDER BY created_at DESC`, tenantEmail, models.RequestPending)
	return reqs, err
}

// AcceptRequest moves a pending request to accepted and cross-links the
// tenant and landlord in one transaction.
func (r *RequestRepo) AcceptRequest(ctx context.Context, requestID, tenantUID, tenantEmail string) (req models.Request, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Request{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM requests WHERE id=$1 FOR UPDATE`, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRequestNotFound
		}
		return models.Request{}, err
	}
	if !strings.EqualFold(req.TenantEmail, tenantEmail) {
		err = ErrRequestNotForTenant
		return models.Request{}, err
	}
	if req.Status != models.RequestPending {
		err = ErrRequestNotPending
		return models.Request{}, err
	}
	if req.LandlordUID == "" {
		err = ErrRequestNoLandlord
		return models.Request{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE requests SET status=$2 WHERE id=$1`, requestID, models.RequestAccepted); err != nil {
		return models.Request{}, err
	}
	// a tenant has one landlord at a time
	if _, err = tx.ExecContext(ctx, `DELETE FROM landlord_tenants WHERE tenant_uid=$1 AND landlord_uid<>$2`, tenantUID, req.LandlordUID); err != nil {
		return models.Request{}, err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO landlord_tenants (landlord_uid, tenant_uid, email) VALUES ($1, $2, $3)
        ON CONFLICT (landlord_uid, tenant_uid) DO UPDATE SET email = EXCLUDED.email, attached_at = NOW()`,
		req.LandlordUID, tenantUID, tenantEmail); err != nil {
		return models.Request{}, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE users SET landlord_email=$2, landlord_uid=$3 WHERE uid=$1`,
		tenantUID, req.LandlordEmail, req.LandlordUID); err != nil {
		return models.Request{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.Request{}, err
	}

	req.Status = models.RequestAccepted
	return req, nil
}
