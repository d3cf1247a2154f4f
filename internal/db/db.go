package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens the database connection.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
            uid TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            username TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL,
            state TEXT NOT NULL DEFAULT '',
            country TEXT NOT NULL DEFAULT '',
            landlord_email TEXT NOT NULL DEFAULT '',
            landlord_uid TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS landlord_tenants (
            landlord_uid TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            tenant_uid TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            email TEXT NOT NULL,
            attached_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY(landlord_uid, tenant_uid)
        );`,
	`CREATE TABLE IF NOT EXISTS requests (
            id TEXT PRIMARY KEY,
            tenant_email TEXT NOT NULL,
            landlord_email TEXT NOT NULL,
            landlord_uid TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS requests_tenant_status_idx ON requests(tenant_email, status);`,
	`CREATE TABLE IF NOT EXISTS issues (
            id SERIAL PRIMARY KEY,
            label TEXT NOT NULL,
            tenant_uid TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            ai_advice TEXT NOT NULL DEFAULT '',
            days INT NOT NULL DEFAULT 7,
            photo_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS issues_tenant_idx ON issues(tenant_uid);`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
            id SERIAL PRIMARY KEY,
            chat_id TEXT NOT NULL,
            sender TEXT NOT NULL,
            message TEXT NOT NULL,
            type TEXT NOT NULL DEFAULT 'text',
            created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
        );`,
	`CREATE INDEX IF NOT EXISTS chat_messages_room_idx ON chat_messages(chat_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS sessions (
            token TEXT PRIMARY KEY,
            uid TEXT NOT NULL,
            email TEXT NOT NULL,
            role TEXT NOT NULL,
            id_token TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires_at TIMESTAMPTZ NOT NULL
        );`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(db *sqlx.DB, logger *zap.SugaredLogger) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Infow("database migrations applied", "count", len(migrations))
	return nil
}
