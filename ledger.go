package main

import (
	"errors"
	"log"
	"sync"
	"time"
)

var (
	errInsufficientFunds   = errors.New("INSUFFICIENT_FUNDS")
	errInvalidTarget       = errors.New("INVALID_TARGET")
	errPetLocked           = errors.New("PET_LOCKED")
	errAlreadyMutated      = errors.New("ALREADY_MUTATED")
	errNotMutated          = errors.New("NOT_MUTATED")
	errCannotBanSuperAdmin = errors.New("CANNOT_BAN_SUPER_ADMIN")
)

const defaultStartingCoins = 500

// Item is one owned pet in an inventory. BaseValue is only set while a
// mutation is applied, so the pre-mutation value can be restored.
type Item struct {
	Name         string `json:"name"`
	Rarity       string `json:"rarity"`
	Value        int64  `json:"value"`
	Image        string `json:"image,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
	Mutated      bool   `json:"mutated,omitempty"`
	MutationName string `json:"mutationName,omitempty"`
	BaseValue    *int64 `json:"baseValue,omitempty"`
}

// Ledger is one account's economic state. Inventory is most-recent-first.
type Ledger struct {
	Coins          int64
	Inventory      []Item
	LuckMultiplier float64
}

// LedgerStore owns every loaded ledger. All core operations run under one
// mutex; gameplay is effectively single-threaded per the event-driven model
// and the mutex just makes that safe under Go's HTTP concurrency.
//
// Every mutating operation is followed by a fire-and-forget save through the
// gateway. Save failures are logged and swallowed; gameplay continues on the
// in-memory state.
type LedgerStore struct {
	mu        sync.Mutex
	ledgers   map[string]*Ledger
	store     SaveStore
	saver     *Saver
	presenter Presenter
}

func NewLedgerStore(store SaveStore, saver *Saver, presenter Presenter) *LedgerStore {
	return &LedgerStore{
		ledgers:   make(map[string]*Ledger),
		store:     store,
		saver:     saver,
		presenter: presenter,
	}
}

// get loads the ledger through the gateway on first touch. An absent
// snapshot means a fresh account: 500 coins, empty inventory. Callers must
// hold s.mu.
func (s *LedgerStore) get(username string) (*Ledger, error) {
	if l, ok := s.ledgers[username]; ok {
		return l, nil
	}

	snap, found, err := s.store.Load(username)
	if err != nil {
		return nil, err
	}

	l := &Ledger{Coins: defaultStartingCoins, LuckMultiplier: 1.0}
	if found {
		l.Coins = snap.Coins
		l.Inventory = snap.Inventory
		l.LuckMultiplier = snap.LuckMultiplier
		if l.LuckMultiplier < 1.0 {
			l.LuckMultiplier = 1.0
		}
	}
	s.ledgers[username] = l
	return l, nil
}

// requestSave hands the current snapshot to the saver. Without a saver the
// write happens inline, still best-effort.
func (s *LedgerStore) requestSave(username string, l *Ledger) {
	snap := Snapshot{
		Coins:          l.Coins,
		Inventory:      append([]Item(nil), l.Inventory...),
		LuckMultiplier: l.LuckMultiplier,
		LastSaved:      time.Now().UTC(),
	}
	if s.saver != nil {
		s.saver.Request(username, snap)
		return
	}
	if err := s.store.Save(username, snap); err != nil {
		log.Println("Ledger: save failed for", username, ":", err)
	}
}

func (s *LedgerStore) notifyChanged(username string) {
	if s.presenter != nil {
		s.presenter.LedgerChanged(username)
	}
}

func (s *LedgerStore) notifyResult(username, outcome string) {
	if s.presenter != nil {
		s.presenter.ResultRevealed(username, outcome)
	}
}

// View returns a copy of the account's ledger, loading it if needed.
func (s *LedgerStore) View(username string) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return Ledger{}, err
	}
	return Ledger{
		Coins:          l.Coins,
		Inventory:      append([]Item(nil), l.Inventory...),
		LuckMultiplier: l.LuckMultiplier,
	}, nil
}

// Credit adds coins. Negative amounts are ignored; the balance never goes
// down through this path.
func (s *LedgerStore) Credit(username string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return 0, err
	}
	if amount > 0 {
		l.Coins += amount
	}
	s.requestSave(username, l)
	s.notifyChanged(username)
	return l.Coins, nil
}

// Debit removes coins, rejecting the whole operation when the balance is too
// low.
func (s *LedgerStore) Debit(username string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return 0, err
	}
	if amount > l.Coins {
		return l.Coins, errInsufficientFunds
	}
	l.Coins -= amount
	s.requestSave(username, l)
	s.notifyChanged(username)
	return l.Coins, nil
}

// SetCoins is the admin absolute override, clamped at zero.
func (s *LedgerStore) SetCoins(username string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		amount = 0
	}
	l.Coins = amount
	s.requestSave(username, l)
	s.notifyChanged(username)
	return l.Coins, nil
}

// AddItem prepends an item; the inventory stays most-recent-first.
func (s *LedgerStore) AddItem(username string, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return err
	}
	l.Inventory = append([]Item{item}, l.Inventory...)
	s.requestSave(username, l)
	s.notifyChanged(username)
	return nil
}

// SellItem removes the item at index and credits its value. Locked items
// cannot be sold.
func (s *LedgerStore) SellItem(username string, index int) (Item, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return Item{}, 0, err
	}
	if index < 0 || index >= len(l.Inventory) {
		return Item{}, l.Coins, errInvalidTarget
	}
	item := l.Inventory[index]
	if item.Locked {
		return Item{}, l.Coins, errPetLocked
	}
	l.Inventory = append(l.Inventory[:index], l.Inventory[index+1:]...)
	l.Coins += item.Value
	s.requestSave(username, l)
	s.notifyChanged(username)
	return item, l.Coins, nil
}

// ToggleLock flips the locked flag on the item at index. No economic effect.
func (s *LedgerStore) ToggleLock(username string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(l.Inventory) {
		return false, errInvalidTarget
	}
	l.Inventory[index].Locked = !l.Inventory[index].Locked
	s.requestSave(username, l)
	s.notifyChanged(username)
	return l.Inventory[index].Locked, nil
}

// SetLuck stores an account's luck multiplier (minimum 1.0). The value is
// surfaced in the player state but does not feed the sampler.
func (s *LedgerStore) SetLuck(username string, multiplier float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return 0, err
	}
	if multiplier < 1.0 {
		return l.LuckMultiplier, errInvalidTarget
	}
	l.LuckMultiplier = multiplier
	s.requestSave(username, l)
	s.notifyChanged(username)
	return l.LuckMultiplier, nil
}

// HatchFrom debits the egg price and draws one pet from the egg under its
// current weights. The ledger is updated before any client-side reveal
// animation runs; the animation is purely presentational.
func (s *LedgerStore) HatchFrom(username string, egg Egg, rng RandomSource) (Item, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return Item{}, 0, err
	}
	if egg.Price > l.Coins {
		return Item{}, l.Coins, errInsufficientFunds
	}

	weights := make([]float64, len(egg.Pets))
	for i, p := range egg.Pets {
		weights[i] = p.Chance
	}
	pet := egg.Pets[weightedIndex(weights, rng)]

	l.Coins -= egg.Price
	item := Item{Name: pet.Name, Rarity: pet.Rarity, Value: pet.Value, Image: pet.Image}
	l.Inventory = append([]Item{item}, l.Inventory...)

	s.requestSave(username, l)
	s.notifyResult(username, pet.Name)
	s.notifyChanged(username)
	return item, l.Coins, nil
}

// RequestSaveAll re-requests a save for every loaded ledger. Driven by the
// autosave ticker and the shutdown path.
func (s *LedgerStore) RequestSaveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for username, l := range s.ledgers {
		s.requestSave(username, l)
	}
}
