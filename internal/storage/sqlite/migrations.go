package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: games must be created before every table that references it.
const schema = `
CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL,
    manager_id TEXT NOT NULL,
    passcode_hash TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    settling_at INTEGER NOT NULL DEFAULT 0,
    closed_at INTEGER NOT NULL DEFAULT 0,
    cash_pool INTEGER NOT NULL DEFAULT 0,
    credit_pool INTEGER NOT NULL DEFAULT 0,
    reserved_cash INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    name TEXT NOT NULL,
    is_manager INTEGER NOT NULL,
    join_order INTEGER NOT NULL,
    joined_at INTEGER NOT NULL,
    is_active INTEGER NOT NULL,
    current_chips INTEGER NOT NULL,
    total_cash_in INTEGER NOT NULL CHECK (total_cash_in >= 0),
    total_credit_in INTEGER NOT NULL CHECK (total_credit_in >= 0),
    credits_owed INTEGER NOT NULL CHECK (credits_owed >= 0),
    checkout_requested INTEGER NOT NULL,
    checkout_status TEXT NOT NULL,
    frozen_cash_in INTEGER,
    frozen_credit_in INTEGER,
    frozen_total INTEGER,
    submitted_chip_count INTEGER,
    preferred_cash INTEGER NOT NULL,
    preferred_credit INTEGER NOT NULL,
    validated_chip_count INTEGER,
    chips_after_credit INTEGER NOT NULL,
    credit_repaid INTEGER NOT NULL,
    profit_loss INTEGER NOT NULL,
    input_locked INTEGER NOT NULL,
    excess_absorbed INTEGER NOT NULL,
    dist_cash INTEGER,
    dist_source TEXT NOT NULL DEFAULT '',
    dist_committed_at INTEGER NOT NULL DEFAULT 0,
    payout_cash INTEGER,
    payout_credit INTEGER,
    UNIQUE (game_id, join_order),
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS credit_assignments (
    player_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    from_player_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (player_id, position),
    FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS chip_requests (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    player_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    type TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    status TEXT NOT NULL,
    edited_amount INTEGER,
    resolved_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    resolved_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    player_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    request_id TEXT NOT NULL DEFAULT '',
    counterparty_id TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (game_id, seq),
    FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_players_game_id ON players(game_id);
CREATE INDEX IF NOT EXISTS idx_chip_requests_game_id ON chip_requests(game_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_game_id ON ledger_entries(game_id);

-- A request is recorded at most once; a player is paid out at most once.
CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_request_once
    ON ledger_entries(request_id) WHERE request_id != '';
CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_payout_once
    ON ledger_entries(player_id, kind) WHERE kind IN ('PAYOUT_CASH', 'PAYOUT_CREDIT');
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
