package database

// schemas maps database names to their embedded schema DDL.
// Compiled into the binary so deploys are a single file.
var schemas = map[string]string{
	"ledger": ledgerSchema,
	"cache":  cacheSchema,
}

// ledgerSchema holds the user's financial records. Trades and cash flows are
// immutable once written; the only mutation is owner-scoped deletion.
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	is_admin   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	ticker     TEXT NOT NULL,
	side       TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
	quantity   REAL NOT NULL CHECK (quantity > 0),
	unit_price REAL NOT NULL CHECK (unit_price > 0),
	currency   TEXT NOT NULL,
	owner_id   INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_owner ON trades(owner_id);
CREATE INDEX IF NOT EXISTS idx_trades_owner_ticker ON trades(owner_id, ticker);

CREATE TABLE IF NOT EXISTS cash_flows (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	direction   TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
	category    TEXT NOT NULL,
	amount      REAL NOT NULL CHECK (amount > 0),
	currency    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner_id    INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cash_flows_owner ON cash_flows(owner_id);
CREATE INDEX IF NOT EXISTS idx_cash_flows_owner_date ON cash_flows(owner_id, date);

CREATE TABLE IF NOT EXISTS categories (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL,
	direction TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
	owner_id  INTEGER NOT NULL,
	UNIQUE (owner_id, name, direction)
);

CREATE TABLE IF NOT EXISTS watchlist (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	target_price REAL NOT NULL DEFAULT 0,
	notes        TEXT NOT NULL DEFAULT '',
	owner_id     INTEGER NOT NULL,
	UNIQUE (owner_id, ticker)
);
`

// cacheSchema holds ephemeral data: client response caches keyed by ticker or
// pair with an expiration timestamp, and the last good valuation snapshot
// per owner. Everything here can be refetched or recomputed.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	ticker     TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_expires ON quotes(expires_at);

CREATE TABLE IF NOT EXISTS quote_info (
	ticker     TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quote_info_expires ON quote_info(expires_at);

CREATE TABLE IF NOT EXISTS dividend_info (
	ticker     TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dividend_info_expires ON dividend_info(expires_at);

CREATE TABLE IF NOT EXISTS exchangerate (
	pair       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchangerate_expires ON exchangerate(expires_at);

CREATE TABLE IF NOT EXISTS valuation_snapshots (
	owner_id   INTEGER PRIMARY KEY,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`
