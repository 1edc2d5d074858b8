package main

import "database/sql"

func ensureSchema(db *sql.DB) error {

	// accounts
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			account_id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL,
			last_login_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// sessions
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sessions_account_id
		ON sessions (account_id);
	`)
	if err != nil {
		return err
	}

	// game saves (the persistence gateway's table)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS game_saves (
			username TEXT PRIMARY KEY,
			coins BIGINT NOT NULL,
			inventory JSONB NOT NULL DEFAULT '[]',
			luck_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			last_saved TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		ALTER TABLE game_saves
			ADD COLUMN IF NOT EXISTS luck_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0;
	`)
	if err != nil {
		return err
	}

	// ban registry, independent of accounts and saves
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bans (
			username TEXT PRIMARY KEY,
			reason TEXT,
			banned_at TIMESTAMPTZ NOT NULL,
			banned_by TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// hatch / mutation audit log
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hatch_log (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			kind TEXT NOT NULL,
			egg_name TEXT,
			item_name TEXT NOT NULL,
			outcome TEXT,
			price_paid BIGINT NOT NULL,
			multiplier DOUBLE PRECISION,
			value_before BIGINT,
			value_after BIGINT,
			coins_before BIGINT NOT NULL,
			coins_after BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_hatch_log_username
		ON hatch_log (username);
	`)
	return err
}
