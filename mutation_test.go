package main

import (
	"errors"
	"math"
	"testing"
)

// Cumulative bands of the mutation table:
// 0.25 Stable, 0.45 Shiny, 0.60 Supercharged, 0.68 Celestial,
// 0.71 Mythic, 0.73 Quantum, 0.83 Corrupted, 0.85 Abyssal, 1.00 No Effect.

func TestMutationTableWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, m := range MutationTable() {
		sum += m.Chance
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("mutation weights sum to %v, want 1.0", sum)
	}
}

func TestMutatePetFixedMultiplier(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 200000)
	s.AddItem("alice", Item{Name: "Dog", Rarity: RarityCommon, Value: 100})

	// 0.70 lands in the Mythic Rebirth band (x5).
	result, err := s.MutatePet("alice", 0, fixedRNG{0.70})
	if err != nil {
		t.Fatal(err)
	}
	if result.Outcome.Mult != 5.0 {
		t.Fatalf("outcome mult = %v, want 5.0", result.Outcome.Mult)
	}
	if result.Destroyed {
		t.Fatal("unexpected destruction")
	}
	if result.Coins != 100000 {
		t.Errorf("coins after fee = %d, want 100000", result.Coins)
	}
	if result.Item.Value != 500 {
		t.Errorf("value = %d, want 500", result.Item.Value)
	}
	if !result.Item.Mutated || result.Item.MutationName == "" {
		t.Error("item not marked mutated")
	}
	if result.Item.BaseValue == nil || *result.Item.BaseValue != 100 {
		t.Error("base value not recorded")
	}
}

func TestMutateThenRemoveRoundTrip(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 200000)
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	if _, err := s.MutatePet("alice", 0, fixedRNG{0.70}); err != nil {
		t.Fatal(err)
	}

	item, coins, err := s.RemoveMutation("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if item.Value != 100 {
		t.Errorf("restored value = %d, want 100", item.Value)
	}
	if item.Mutated || item.MutationName != "" || item.BaseValue != nil {
		t.Error("mutation state not cleared")
	}
	// Fee 100,000 out, refund 30,000 back: net -70,000.
	if coins != 130000 {
		t.Errorf("coins = %d, want 130000", coins)
	}
}

func TestMutateDestroysOnZeroMultiplier(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 150000)
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	// 0.84 lands in the Abyssal Failure band (x0).
	result, err := s.MutatePet("alice", 0, fixedRNG{0.84})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Destroyed {
		t.Fatal("expected destruction")
	}
	// Fee kept, no refund.
	if result.Coins != 50000 {
		t.Errorf("coins = %d, want 50000", result.Coins)
	}

	l, _ := s.View("alice")
	if len(l.Inventory) != 0 {
		t.Errorf("inventory size = %d, want 0", len(l.Inventory))
	}
}

func TestMutateQuantumRiftRollsSecondDraw(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 100000)
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	// First draw 0.72 lands in the Quantum Rift band; second draw 0.5
	// resolves the multiplier: 0.5 + 0.5*9.5 = 5.25.
	rng := &scriptedRNG{vals: []float64{0.72, 0.5}}
	result, err := s.MutatePet("alice", 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Outcome.Random {
		t.Fatal("expected the random-multiplier outcome")
	}
	if math.Abs(result.Multiplier-5.25) > 1e-9 {
		t.Errorf("multiplier = %v, want 5.25", result.Multiplier)
	}
	if result.Item.Value != 525 {
		t.Errorf("value = %d, want 525", result.Item.Value)
	}
}

func TestMutateInsufficientFunds(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 99999)
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	_, err := s.MutatePet("alice", 0, fixedRNG{0.1})
	if !errors.Is(err, errInsufficientFunds) {
		t.Fatalf("err = %v, want INSUFFICIENT_FUNDS", err)
	}

	l, _ := s.View("alice")
	if l.Coins != 99999 {
		t.Errorf("coins = %d, want 99999", l.Coins)
	}
	if l.Inventory[0].Mutated {
		t.Error("item mutated despite rejected fee")
	}
}

func TestMutateAlreadyMutatedRejected(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 300000)
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	if _, err := s.MutatePet("alice", 0, fixedRNG{0.1}); err != nil {
		t.Fatal(err)
	}
	_, err := s.MutatePet("alice", 0, fixedRNG{0.1})
	if !errors.Is(err, errAlreadyMutated) {
		t.Fatalf("err = %v, want ALREADY_MUTATED", err)
	}

	// Second fee must not have been taken.
	l, _ := s.View("alice")
	if l.Coins != 200000 {
		t.Errorf("coins = %d, want 200000", l.Coins)
	}
}

func TestMutateInvalidIndex(t *testing.T) {
	s, _ := newTestLedgers()
	s.SetCoins("alice", 200000)

	if _, err := s.MutatePet("alice", 0, fixedRNG{0.1}); !errors.Is(err, errInvalidTarget) {
		t.Fatalf("err = %v, want INVALID_TARGET", err)
	}
	if _, err := s.MutatePet("alice", -1, fixedRNG{0.1}); !errors.Is(err, errInvalidTarget) {
		t.Fatalf("err = %v, want INVALID_TARGET", err)
	}
}

func TestRemoveMutationOnPlainItemRejected(t *testing.T) {
	s, _ := newTestLedgers()
	s.AddItem("alice", Item{Name: "Dog", Value: 100})

	_, coins, err := s.RemoveMutation("alice", 0)
	if !errors.Is(err, errNotMutated) {
		t.Fatalf("err = %v, want NOT_MUTATED", err)
	}
	if coins != 500 {
		t.Errorf("coins = %d, want 500", coins)
	}
}

func TestResolveMultiplierRange(t *testing.T) {
	random := Mutation{Name: "random", Random: true}
	rng := NewSeededRNG(99)
	for i := 0; i < 10000; i++ {
		m := resolveMultiplier(random, rng)
		if m < randomMultMin || m >= randomMultMax {
			t.Fatalf("draw %d out of [%v,%v): %v", i, randomMultMin, randomMultMax, m)
		}
	}

	fixed := Mutation{Name: "fixed", Mult: 1.5}
	if got := resolveMultiplier(fixed, rng); got != 1.5 {
		t.Errorf("fixed multiplier = %v, want 1.5", got)
	}
}
