package main

import (
	"log"
	"sync"
	"time"
)

// Saver writes snapshots to the gateway in the background. Each account has
// a single pending slot: a new request for the same account replaces the
// snapshot that was waiting, never queues behind it. Last write wins, which
// is fine under the one-session-per-account assumption.
type Saver struct {
	mu      sync.Mutex
	pending map[string]Snapshot
	kick    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	store   SaveStore
}

func NewSaver(store SaveStore) *Saver {
	return &Saver{
		pending: make(map[string]Snapshot),
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		store:   store,
	}
}

// Request schedules a save. Supersedes any pending save for the account.
func (sv *Saver) Request(username string, snap Snapshot) {
	sv.mu.Lock()
	sv.pending[username] = snap
	sv.mu.Unlock()

	select {
	case sv.kick <- struct{}{}:
	default:
	}
}

// Start runs the drain loop in a goroutine.
func (sv *Saver) Start() {
	go func() {
		defer close(sv.done)
		for {
			select {
			case <-sv.kick:
				sv.Flush()
			case <-sv.stop:
				sv.Flush()
				return
			}
		}
	}()
}

// Flush synchronously writes everything pending. Failures are logged and the
// snapshot is dropped; the next autosave tick supplies a fresh one.
func (sv *Saver) Flush() {
	sv.mu.Lock()
	batch := sv.pending
	sv.pending = make(map[string]Snapshot)
	sv.mu.Unlock()

	for username, snap := range batch {
		if err := sv.store.Save(username, snap); err != nil {
			log.Println("Saver: save failed for", username, ":", err)
		}
	}
}

// Stop flushes outstanding saves and stops the loop. Used on shutdown as the
// page-exit save.
func (sv *Saver) Stop() {
	close(sv.stop)
	<-sv.done
}

// startAutosaveLoop periodically re-saves every loaded ledger, mirroring the
// client-side 10 second autosave interval.
func startAutosaveLoop(ledgers *LedgerStore, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		for range ticker.C {
			ledgers.RequestSaveAll()
		}
	}()
}
