package store

// postgresSchema is applied on startup. Statements are idempotent.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         VARCHAR PRIMARY KEY,
	api_key    VARCHAR NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS accounts_api_key_idx ON accounts (api_key);

CREATE TABLE IF NOT EXISTS urls (
	id           UUID PRIMARY KEY,
	short_id     VARCHAR NOT NULL,
	views        BIGINT NOT NULL DEFAULT 0 CHECK (views >= 0),
	redirect_url VARCHAR NOT NULL,
	account_id   VARCHAR NOT NULL REFERENCES accounts (id),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS short_id_idx ON urls (short_id);
CREATE INDEX IF NOT EXISTS account_id_idx ON urls (account_id);

CREATE TABLE IF NOT EXISTS link_events (
	id          BIGSERIAL PRIMARY KEY,
	kind        VARCHAR NOT NULL,
	short_id    VARCHAR NOT NULL,
	account_id  VARCHAR,
	occurred_at TIMESTAMPTZ NOT NULL,
	client_ip   VARCHAR,
	user_agent  VARCHAR,
	referrer    VARCHAR,
	device      VARCHAR,
	browser     VARCHAR,
	os          VARCHAR
);

CREATE INDEX IF NOT EXISTS link_events_short_id_idx ON link_events (short_id, occurred_at);
`

// sqliteSchema mirrors postgresSchema for SQLiteStore. Timestamps are
// stored as unix microseconds.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	api_key    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	deleted_at INTEGER
);

CREATE INDEX IF NOT EXISTS accounts_api_key_idx ON accounts (api_key);

CREATE TABLE IF NOT EXISTS urls (
	id           TEXT PRIMARY KEY,
	short_id     TEXT NOT NULL,
	views        INTEGER NOT NULL DEFAULT 0 CHECK (views >= 0),
	redirect_url TEXT NOT NULL,
	account_id   TEXT NOT NULL REFERENCES accounts (id),
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS short_id_idx ON urls (short_id);
CREATE INDEX IF NOT EXISTS account_id_idx ON urls (account_id);
`
