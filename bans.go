package main

import (
	"database/sql"
	"log"
	"sort"
	"sync"
	"time"
)

// BanRecord lives outside the ledger and the account row. A banned account
// keeps its credentials and its save; it is only dropped from admin pickers.
type BanRecord struct {
	Username string    `json:"username"`
	Reason   string    `json:"reason,omitempty"`
	BannedAt time.Time `json:"bannedAt"`
	BannedBy string    `json:"bannedBy"`
}

// BanRegistry caches the ban table in memory, writing through to the
// database when one is attached. Same shape as the global settings cache.
type BanRegistry struct {
	mu   sync.RWMutex
	bans map[string]BanRecord
	db   *sql.DB
}

func NewBanRegistry(db *sql.DB) *BanRegistry {
	return &BanRegistry{bans: make(map[string]BanRecord), db: db}
}

func (b *BanRegistry) LoadFromDB() error {
	if b.db == nil {
		return nil
	}
	rows, err := b.db.Query(`
		SELECT username, reason, banned_at, banned_by
		FROM bans
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	for rows.Next() {
		var rec BanRecord
		var reason sql.NullString
		if err := rows.Scan(&rec.Username, &reason, &rec.BannedAt, &rec.BannedBy); err != nil {
			continue
		}
		rec.Reason = reason.String
		b.bans[rec.Username] = rec
	}
	return rows.Err()
}

// Ban records a ban. The super-admin identity can never be banned, no matter
// who asks.
func (b *BanRegistry) Ban(username, reason, bannedBy string) error {
	if username == superAdminUsername {
		return errCannotBanSuperAdmin
	}

	rec := BanRecord{
		Username: username,
		Reason:   reason,
		BannedAt: time.Now().UTC(),
		BannedBy: bannedBy,
	}

	b.mu.Lock()
	b.bans[username] = rec
	b.mu.Unlock()

	if b.db != nil {
		_, err := b.db.Exec(`
			INSERT INTO bans (username, reason, banned_at, banned_by)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username)
			DO UPDATE SET reason = EXCLUDED.reason, banned_at = EXCLUDED.banned_at, banned_by = EXCLUDED.banned_by
		`, rec.Username, rec.Reason, rec.BannedAt, rec.BannedBy)
		if err != nil {
			log.Println("Bans: persist failed for", username, ":", err)
		}
	}
	return nil
}

func (b *BanRegistry) Unban(username string) {
	b.mu.Lock()
	delete(b.bans, username)
	b.mu.Unlock()

	if b.db != nil {
		if _, err := b.db.Exec(`DELETE FROM bans WHERE username = $1`, username); err != nil {
			log.Println("Bans: unban persist failed for", username, ":", err)
		}
	}
}

func (b *BanRegistry) IsBanned(username string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, banned := b.bans[username]
	return banned
}

func (b *BanRegistry) Info(username string) (BanRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.bans[username]
	return rec, ok
}

// All returns every ban record sorted by username.
func (b *BanRegistry) All() []BanRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]BanRecord, 0, len(b.bans))
	for _, rec := range b.bans {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
