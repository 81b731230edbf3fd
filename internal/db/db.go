package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against the given DSN, verifies it with a ping and
// bootstraps the schema. The service can also run without Postgres entirely
// (in-memory store); callers only reach this when a DSN is configured.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("connected to Postgres")

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// ensureSchema creates the tables the stores rely on if they are missing.
// Statements are idempotent so restarts are safe.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('client', 'freelancer')),
            password_hash TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS client_profiles (
            user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            company_name TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS freelancer_profiles (
            user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            headline TEXT NOT NULL,
            description TEXT NOT NULL,
            category_id TEXT NOT NULL,
            skills TEXT[] NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS service_requests (
            id UUID PRIMARY KEY,
            client_id UUID NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            enhanced_description TEXT NOT NULL DEFAULT '',
            category_id TEXT NOT NULL,
            skills_required TEXT[] NOT NULL,
            budget_min DOUBLE PRECISION NOT NULL,
            budget_max DOUBLE PRECISION NOT NULL,
            deadline_days INTEGER NOT NULL,
            status TEXT NOT NULL CHECK (status IN ('open', 'in_progress', 'completed', 'cancelled')),
            created_at TIMESTAMP WITH TIME ZONE NOT NULL,
            expires_at TIMESTAMP WITH TIME ZONE NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_service_requests_client ON service_requests(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status)`,
		`CREATE TABLE IF NOT EXISTS bids (
            id UUID PRIMARY KEY,
            request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
            freelancer_id UUID NOT NULL REFERENCES users(id),
            amount DOUBLE PRECISION NOT NULL,
            delivery_time_days INTEGER NOT NULL,
            proposal TEXT NOT NULL,
            status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
            created_at TIMESTAMP WITH TIME ZONE NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bids_request ON bids(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_freelancer ON bids(freelancer_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            sender_id UUID NOT NULL REFERENCES users(id),
            receiver_id UUID NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL,
            read BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Printf("schema bootstrap failed: %v", err)
			return err
		}
	}
	return nil
}
