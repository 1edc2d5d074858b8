package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is the persisted view of one account's economic state.
type Snapshot struct {
	Coins          int64     `json:"coins"`
	Inventory      []Item    `json:"inventory"`
	LuckMultiplier float64   `json:"luckMultiplier,omitempty"`
	LastSaved      time.Time `json:"lastSaved"`
}

// SaveStore is the persistence gateway. The core never assumes a save
// succeeded; failures are logged by the caller and the next autosave tick is
// the retry.
type SaveStore interface {
	Load(username string) (Snapshot, bool, error)
	Save(username string, snap Snapshot) error
}

/* ======================
   Postgres store
   ====================== */

type postgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) SaveStore {
	return &postgresStore{db: db}
}

func (s *postgresStore) Load(username string) (Snapshot, bool, error) {
	var snap Snapshot
	var inventory []byte
	err := s.db.QueryRow(`
		SELECT coins, inventory, luck_multiplier, last_saved
		FROM game_saves
		WHERE username = $1
	`, username).Scan(&snap.Coins, &inventory, &snap.LuckMultiplier, &snap.LastSaved)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	if len(inventory) > 0 {
		if err := json.Unmarshal(inventory, &snap.Inventory); err != nil {
			return Snapshot{}, false, err
		}
	}
	return snap, true, nil
}

func (s *postgresStore) Save(username string, snap Snapshot) error {
	inventory, err := json.Marshal(snap.Inventory)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO game_saves (username, coins, inventory, luck_multiplier, last_saved)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username)
		DO UPDATE SET
			coins = EXCLUDED.coins,
			inventory = EXCLUDED.inventory,
			luck_multiplier = EXCLUDED.luck_multiplier,
			last_saved = EXCLUDED.last_saved
	`, username, snap.Coins, inventory, snap.LuckMultiplier, snap.LastSaved)
	return err
}

/* ======================
   In-memory store
   ====================== */

// memoryStore keeps snapshots in a map. Used by tests and local dev without
// a database.
type memoryStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{snaps: make(map[string]Snapshot)}
}

func (s *memoryStore) Load(username string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[username]
	if !ok {
		return Snapshot{}, false, nil
	}
	snap.Inventory = append([]Item(nil), snap.Inventory...)
	return snap, true, nil
}

func (s *memoryStore) Save(username string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Inventory = append([]Item(nil), snap.Inventory...)
	s.snaps[username] = snap
	return nil
}
