package main

import "math"

const (
	mutationFee    = 100_000
	mutationRefund = 30_000
)

// Mutation is one outcome in the mutation pool. Random entries resolve their
// multiplier with a uniform draw in [0.5, 10) instead of a fixed value.
type Mutation struct {
	Name   string  `json:"name"`
	Chance float64 `json:"chance"`
	Mult   float64 `json:"mult"`
	Random bool    `json:"random,omitempty"`
	Color  string  `json:"color,omitempty"`
}

const (
	randomMultMin = 0.5
	randomMultMax = 10.0
)

// mutationTable is the fixed secondary pool. Weights sum to 1.00. Unlike the
// egg pools it is not admin-rebalancable.
var mutationTable = []Mutation{
	{Name: "🧩 Stable Gene", Chance: 0.25, Mult: 1.2, Color: "#8b8bff"},
	{Name: "✨ Shiny Variant", Chance: 0.20, Mult: 1.5, Color: "#ffd700"},
	{Name: "⚡ Supercharged", Chance: 0.15, Mult: 2.0, Color: "#00ffe1"},
	{Name: "🌌 Celestial Form", Chance: 0.08, Mult: 3.0, Color: "#c77dff"},
	{Name: "🔥 Mythic Rebirth", Chance: 0.03, Mult: 5.0, Color: "#ff6aa6"},
	{Name: "💫 Quantum Rift", Chance: 0.02, Random: true, Color: "#7df9ff"},
	{Name: "☠️ Corrupted Gene", Chance: 0.10, Mult: 0.5, Color: "#a52a2a"},
	{Name: "💀 Abyssal Failure", Chance: 0.02, Mult: 0.0, Color: "#2b0f45"},
	{Name: "🧬 No Effect", Chance: 0.15, Mult: 1.0, Color: "#9aa0a6"},
}

// MutationTable returns a copy for display (chance sheets, admin pickers).
func MutationTable() []Mutation {
	return append([]Mutation(nil), mutationTable...)
}

func pickMutation(rng RandomSource) Mutation {
	weights := make([]float64, len(mutationTable))
	for i, m := range mutationTable {
		weights[i] = m.Chance
	}
	return mutationTable[weightedIndex(weights, rng)]
}

func resolveMultiplier(m Mutation, rng RandomSource) float64 {
	if !m.Random {
		return m.Mult
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return randomMultMin + rng.Float64()*(randomMultMax-randomMultMin)
}

// MutationResult reports the outcome of one paid mutation.
type MutationResult struct {
	Outcome    Mutation
	Multiplier float64
	Destroyed  bool
	Item       Item  // post-mutation item; zero when destroyed
	Coins      int64 // balance after the fee
}

// MutatePet applies a paid mutation to the item at index. The fee is debited
// first; a multiplier of zero (or below) destroys the pet with no refund.
func (s *LedgerStore) MutatePet(username string, index int, rng RandomSource) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return MutationResult{}, err
	}
	if index < 0 || index >= len(l.Inventory) {
		return MutationResult{}, errInvalidTarget
	}
	if l.Inventory[index].Mutated {
		return MutationResult{}, errAlreadyMutated
	}
	if l.Coins < mutationFee {
		return MutationResult{}, errInsufficientFunds
	}

	l.Coins -= mutationFee

	outcome := pickMutation(rng)
	multiplier := resolveMultiplier(outcome, rng)

	if multiplier <= 0 {
		l.Inventory = append(l.Inventory[:index], l.Inventory[index+1:]...)
		s.requestSave(username, l)
		s.notifyResult(username, outcome.Name)
		s.notifyChanged(username)
		return MutationResult{Outcome: outcome, Multiplier: multiplier, Destroyed: true, Coins: l.Coins}, nil
	}

	item := &l.Inventory[index]
	base := item.Value
	item.BaseValue = &base
	item.Mutated = true
	item.MutationName = outcome.Name
	newValue := int64(math.Floor(float64(item.Value) * multiplier))
	if newValue < 0 {
		newValue = 0
	}
	item.Value = newValue

	s.requestSave(username, l)
	s.notifyResult(username, outcome.Name)
	s.notifyChanged(username)
	return MutationResult{Outcome: outcome, Multiplier: multiplier, Item: *item, Coins: l.Coins}, nil
}

// RemoveMutation reverses a mutation: flat 30,000 refund, value restored to
// the recorded pre-mutation value, mutation state cleared. No re-roll. The
// refund is deliberately smaller than the fee.
func (s *LedgerStore) RemoveMutation(username string, index int) (Item, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.get(username)
	if err != nil {
		return Item{}, 0, err
	}
	if index < 0 || index >= len(l.Inventory) {
		return Item{}, l.Coins, errInvalidTarget
	}
	item := &l.Inventory[index]
	if !item.Mutated {
		return Item{}, l.Coins, errNotMutated
	}

	l.Coins += mutationRefund
	if item.BaseValue != nil {
		item.Value = *item.BaseValue
	}
	item.BaseValue = nil
	item.Mutated = false
	item.MutationName = ""

	s.requestSave(username, l)
	s.notifyChanged(username)
	return *item, l.Coins, nil
}
