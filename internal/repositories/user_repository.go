package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tenant-portal/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const uniqueViolation = "23505"

// UserRepository abstracts profile persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, uid string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (models.User, error)
	ListTenants(ctx context.Context, landlordUID string) ([]models.AttachedTenant, error)
	IsAttached(ctx context.Context, landlordUID string, tenantUID string) (bool, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `uid, email, username, role, state, country, landlord_email, landlord_uid, created_at`

// CreateUser stores the profile document created at signup.
func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := r.db.GetContext(ctx, &created, `INSERT INTO users (uid, email, username, role, state, country)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		user.UID, user.Email, user.Username, user.Role, user.State, user.Country)
	if isUniqueViolation(err) {
		return models.User{}, ErrUserExists
	}
	return created, err
}

// GetUser fetches a profile by uid.
func (r *UserRepo) GetUser(ctx context.Context, uid string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE uid=$1`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail fetches a profile by e-mail, case-insensitively.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile overwrites the editable profile fields. The e-mail copy a
// landlord keeps for the tenant follows the change in the same transaction.
func (r *UserRepo) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (user models.User, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.GetContext(ctx, &user, `UPDATE users SET username=$2, email=$3, state=$4, country=$5
        WHERE uid=$1 RETURNING `+userColumns,
		uid, update.Username, update.Email, update.State, update.Country)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = ErrUserNotFound
		return models.User{}, err
	case isUniqueViolation(err):
		err = ErrUserExists
		return models.User{}, err
	case err != nil:
		return models.User{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE landlord_tenants SET email=$2 WHERE tenant_uid=$1`, uid, user.Email); err != nil {
		return models.User{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ListTenants returns the tenants attached to a landlord.
func (r *UserRepo) ListTenants(ctx context.Context, landlordUID string) ([]models.AttachedTenant, error) {
	tenants := []models.AttachedTenant{}
	err := r.db.SelectContext(ctx, &tenants, `SELECT landlord_uid, tenant_uid, email, attached_at
        FROM landlord_tenants WHERE landlord_uid=$1 ORDER BY attached_at ASC`, landlordUID)
	return tenants, err
}

// IsAttached reports whether the tenant currently belongs to the landlord.
func (r *UserRepo) IsAttached(ctx context.Context, landlordUID string, tenantUID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM landlord_tenants WHERE landlord_uid=$1 AND tenant_uid=$2)`, landlordUID, tenantUID)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
