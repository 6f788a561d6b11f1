package db

import (
	"context"
	"database/sql"
)

// The unique indexes below are load-bearing: registration does a
// check-then-create, so the database constraint is the authoritative
// guard against concurrent duplicate signups.
const keystoneMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    fullname text NOT NULL,
    username text NOT NULL,
    email text NOT NULL,
    avatar_url text NOT NULL DEFAULT '',
    cover_image_url text NOT NULL DEFAULT '',
    password_hash text NOT NULL,
    refresh_token text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique
ON users (username);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));
`

func RunKeystoneMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, keystoneMigration)
	return err
}
