package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at startup.
//
// The partial unique index on loans is load-bearing: it makes the
// database reject a second unreturned loan for the same copy even if
// application-level locking were ever bypassed.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    full_name     TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member'
                  CHECK (role IN ('admin','librarian','member')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS books (
    id           BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    author       TEXT NOT NULL,
    isbn         TEXT NOT NULL DEFAULT '',
    publisher    TEXT NOT NULL DEFAULT '',
    publish_year INT  NOT NULL DEFAULT 0,
    category     TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS book_copies (
    id            BIGSERIAL PRIMARY KEY,
    book_id       BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    barcode       TEXT NOT NULL UNIQUE,
    status        TEXT NOT NULL DEFAULT 'available'
                  CHECK (status IN ('available','borrowed','maintenance','lost')),
    location      TEXT NOT NULL DEFAULT '',
    condition     TEXT NOT NULL DEFAULT 'good'
                  CHECK (condition IN ('excellent','good','fair','poor')),
    acquired_date TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS book_copies_book_id_idx ON book_copies (book_id);

CREATE TABLE IF NOT EXISTS members (
    id                   BIGSERIAL PRIMARY KEY,
    member_code          TEXT NOT NULL UNIQUE,
    full_name            TEXT NOT NULL,
    email                TEXT NOT NULL UNIQUE,
    phone                TEXT NOT NULL DEFAULT '',
    membership_type      TEXT NOT NULL
                         CHECK (membership_type IN ('student','teacher','public')),
    membership_status    TEXT NOT NULL DEFAULT 'active'
                         CHECK (membership_status IN ('active','suspended','expired')),
    max_borrow_limit     INT NOT NULL CHECK (max_borrow_limit > 0),
    current_borrow_count INT NOT NULL DEFAULT 0 CHECK (current_borrow_count >= 0),
    total_fines          NUMERIC(14,2) NOT NULL DEFAULT 0,
    registration_date    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS loans (
    id            BIGSERIAL PRIMARY KEY,
    member_id     BIGINT NOT NULL REFERENCES members(id),
    book_id       BIGINT NOT NULL REFERENCES books(id),
    book_copy_id  BIGINT NOT NULL REFERENCES book_copies(id),
    borrow_date   TIMESTAMPTZ NOT NULL,
    due_date      TIMESTAMPTZ NOT NULL,
    return_date   TIMESTAMPTZ,
    status        TEXT NOT NULL DEFAULT 'active'
                  CHECK (status IN ('active','returned')),
    renewal_count INT NOT NULL DEFAULT 0,
    max_renewals  INT NOT NULL DEFAULT 2,
    fine_amount   NUMERIC(14,2) NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS loans_member_id_idx ON loans (member_id);
CREATE UNIQUE INDEX IF NOT EXISTS loans_one_active_per_copy
    ON loans (book_copy_id) WHERE status = 'active';
`

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
