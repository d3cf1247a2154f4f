package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-portal/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

var (
	requestCols = []string{"id", "tenant_email", "landlord_email", "landlord_uid", "status", "created_at"}
	issueCols   = []string{"id", "label", "tenant_uid", "status", "ai_advice", "days", "photo_url", "created_at"}
	messageCols = []string{"id", "chat_id", "sender", "message", "type", "created_at"}
	userCols    = []string{"uid", "email", "username", "role", "state", "country", "landlord_email", "landlord_uid", "created_at"}
	lockRequest = regexp.QuoteMeta(`FROM requests WHERE id=$1 FOR UPDATE`)
	stamp       = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func TestAcceptRequestLinksTenant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRequest).WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow("r1", "t@example.com", "l@example.com", "l1", models.RequestPending, stamp))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET status=$2 WHERE id=$1`)).
		WithArgs("r1", models.RequestAccepted).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM landlord_tenants WHERE tenant_uid=$1 AND landlord_uid<>$2`)).
		WithArgs("t1", "l1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO landlord_tenants`)).
		WithArgs("l1", "t1", "T@example.com").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET landlord_email=$2, landlord_uid=$3 WHERE uid=$1`)).
		WithArgs("t1", "l@example.com", "l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.AcceptRequest(context.Background(), "r1", "t1", "T@example.com")

	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequestTwiceRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRequest).WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow("r1", "t@example.com", "l@example.com", "l1", models.RequestAccepted, stamp))
	mock.ExpectRollback()

	_, err := repo.AcceptRequest(context.Background(), "r1", "t1", "t@example.com")

	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequestRejections(t *testing.T) {
	cases := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
		expected error
	}{
		{
			name:     "missing",
			queryErr: sql.ErrNoRows,
			expected: ErrRequestNotFound,
		},
		{
			name:     "other tenant",
			rows:     sqlmock.NewRows(requestCols).AddRow("r1", "other@example.com", "l@example.com", "l1", models.RequestPending, stamp),
			expected: ErrRequestNotForTenant,
		},
		{
			name:     "no landlord",
			rows:     sqlmock.NewRows(requestCols).AddRow("r1", "t@example.com", "l@example.com", "", models.RequestPending, stamp),
			expected: ErrRequestNoLandlord,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewRequestRepo(db)

			mock.ExpectBegin()
			q := mock.ExpectQuery(lockRequest).WithArgs("r1")
			if tc.queryErr != nil {
				q.WillReturnError(tc.queryErr)
			} else {
				q.WillReturnRows(tc.rows)
			}
			mock.ExpectRollback()

			_, err := repo.AcceptRequest(context.Background(), "r1", "t1", "t@example.com")

			assert.ErrorIs(t, err, tc.expected)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResolveIssueGuards(t *testing.T) {
	cases := []struct {
		name     string
		owner    string
		status   string
		expected error
	}{
		{"another tenant", "t2", models.IssuePending, ErrIssueNotOwned},
		{"already resolved", "t1", models.IssueResolved, ErrIssueAlreadyResolved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewIssueRepo(db)

			mock.ExpectQuery(regexp.QuoteMeta(`FROM issues WHERE id=$1`)).
				WillReturnRows(sqlmock.NewRows(issueCols).AddRow(7, "leak", tc.owner, tc.status, "", 7, "", stamp))

			_, err := repo.ResolveIssue(context.Background(), 7, "t1")

			assert.ErrorIs(t, err, tc.expected)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResolveIssueLosesRaceToConcurrentResolve(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM issues WHERE id=$1`)).
		WillReturnRows(sqlmock.NewRows(issueCols).AddRow(7, "leak", "t1", models.IssuePending, "", 7, "", stamp))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE issues SET status=$3`)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ResolveIssue(context.Background(), 7, "t1")

	assert.ErrorIs(t, err, ErrIssueAlreadyResolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveIssueMarksResolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIssueRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM issues WHERE id=$1`)).
		WillReturnRows(sqlmock.NewRows(issueCols).AddRow(7, "leak", "t1", models.IssuePending, "", 7, "", stamp))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id=$1 AND tenant_uid=$2 AND status=$4`)).
		WillReturnRows(sqlmock.NewRows(issueCols).AddRow(7, "leak", "t1", models.IssueResolved, "", 7, "", stamp))

	issue, err := repo.ResolveIssue(context.Background(), 7, "t1")

	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, issue.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRoomMessagesOldestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE chat_id=$1 ORDER BY created_at ASC, id ASC`)).WithArgs("l1_t1").
		WillReturnRows(sqlmock.NewRows(messageCols).
			AddRow(1, "l1_t1", "l@example.com", "first", models.MessageTypeText, stamp).
			AddRow(2, "l1_t1", "t@example.com", "second", models.MessageTypeText, stamp.Add(time.Minute)))

	msgs, err := repo.ListRoomMessages(context.Background(), "l1_t1")

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.True(t, msgs[0].Timestamp.Before(msgs[1].Timestamp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestRoomMessagesNewestFirstWithLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE chat_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`)).
		WillReturnRows(sqlmock.NewRows(messageCols).
			AddRow(2, "l1_t1", "t@example.com", "second", models.MessageTypeText, stamp.Add(time.Minute)).
			AddRow(1, "l1_t1", "l@example.com", "first", models.MessageTypeText, stamp))

	msgs, err := repo.LatestRoomMessages(context.Background(), "l1_t1", 10)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, 2, msgs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessagesSkipsEmptyBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepo(db)

	require.NoError(t, repo.DeleteMessages(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileCarriesEmailToLandlordLink(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET username=$2, email=$3, state=$4, country=$5`)).
		WithArgs("t1", "tina", "new@example.com", "CA", "US").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("t1", "new@example.com", "tina", models.RoleTenant, "CA", "US", "l@example.com", "l1", stamp))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE landlord_tenants SET email=$2 WHERE tenant_uid=$1`)).
		WithArgs("t1", "new@example.com").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.UpdateProfile(context.Background(), "t1", models.ProfileUpdate{Username: "tina", Email: "new@example.com", State: "CA", Country: "US"})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionUpdateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET email=$2 WHERE uid=$1`)).
		WithArgs("t1", "new@example.com").WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.UpdateEmail(context.Background(), "t1", "new@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
