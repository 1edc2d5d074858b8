package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func floatEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadCatalogFallsBackOnMissingFile(t *testing.T) {
	c := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	eggs := c.Eggs()
	if len(eggs) != 2 {
		t.Fatalf("fallback has %d eggs, want 2", len(eggs))
	}
	if eggs[0].Name != "Common Egg" || eggs[1].Name != "Uncommon Egg" {
		t.Errorf("fallback eggs = [%s, %s]", eggs[0].Name, eggs[1].Name)
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eggs.yaml")
	content := `
- name: Test Egg
  price: 42
  pets:
    - { name: Alpha, rarity: Common, chance: 0.7, value: 5 }
    - { name: Beta, rarity: Rare, chance: 0.3, value: 50 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := LoadCatalog(path)
	egg, ok := c.Egg("Test Egg")
	if !ok {
		t.Fatal("Test Egg not loaded")
	}
	if egg.Price != 42 || len(egg.Pets) != 2 {
		t.Errorf("egg = %+v", egg)
	}
	if egg.Pets[1].Name != "Beta" || !floatEq(egg.Pets[1].Chance, 0.3) {
		t.Errorf("pet = %+v", egg.Pets[1])
	}
}

func TestLoadCatalogFallsBackOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eggs.yaml")
	// Unknown rarity tier.
	content := `
- name: Bad Egg
  price: 1
  pets:
    - { name: X, rarity: Ultra, chance: 1.0, value: 1 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := LoadCatalog(path)
	if _, ok := c.Egg("Bad Egg"); ok {
		t.Fatal("invalid config was accepted")
	}
	if len(c.Eggs()) != 2 {
		t.Error("expected fallback catalog")
	}
}

func TestValidateEggs(t *testing.T) {
	good := []Egg{{Name: "E", Price: 0, Pets: []Pet{{Name: "P", Rarity: RarityCommon, Chance: 1, Value: 1}}}}
	if err := validateEggs(good); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		eggs []Egg
	}{
		{"empty", nil},
		{"no pets", []Egg{{Name: "E", Pets: nil}}},
		{"negative price", []Egg{{Name: "E", Price: -1, Pets: good[0].Pets}}},
		{"chance above one", []Egg{{Name: "E", Pets: []Pet{{Name: "P", Rarity: RarityCommon, Chance: 1.5, Value: 1}}}}},
		{"duplicate egg", []Egg{good[0], good[0]}},
	}
	for _, c := range cases {
		if err := validateEggs(c.eggs); err == nil {
			t.Errorf("%s: invalid config accepted", c.name)
		}
	}
}

func TestRebalanceRedistributesProportionally(t *testing.T) {
	c := NewCatalog([]Egg{{
		Name: "E",
		Pets: []Pet{
			{Name: "A", Rarity: RarityCommon, Chance: 0.2, Value: 1},
			{Name: "B", Rarity: RarityCommon, Chance: 0.3, Value: 1},
			{Name: "C", Rarity: RarityCommon, Chance: 0.5, Value: 1},
		},
	}})

	if err := c.Rebalance("E", "A", 0.6); err != nil {
		t.Fatal(err)
	}

	egg, _ := c.Egg("E")
	// Remaining 0.4 splits 0.3:0.5 across B and C.
	if !floatEq(egg.Pets[0].Chance, 0.6) {
		t.Errorf("A = %v, want 0.6", egg.Pets[0].Chance)
	}
	if !floatEq(egg.Pets[1].Chance, 0.15) {
		t.Errorf("B = %v, want 0.15", egg.Pets[1].Chance)
	}
	if !floatEq(egg.Pets[2].Chance, 0.25) {
		t.Errorf("C = %v, want 0.25", egg.Pets[2].Chance)
	}

	sum := 0.0
	for _, p := range egg.Pets {
		sum += p.Chance
	}
	if !floatEq(sum, 1.0) {
		t.Errorf("weights sum to %v after rebalance", sum)
	}
}

func TestRebalanceEvenSplitWhenOthersZero(t *testing.T) {
	c := NewCatalog([]Egg{{
		Name: "E",
		Pets: []Pet{
			{Name: "A", Rarity: RarityCommon, Chance: 1.0, Value: 1},
			{Name: "B", Rarity: RarityCommon, Chance: 0.0, Value: 1},
			{Name: "C", Rarity: RarityCommon, Chance: 0.0, Value: 1},
		},
	}})

	if err := c.Rebalance("E", "A", 0.4); err != nil {
		t.Fatal(err)
	}

	egg, _ := c.Egg("E")
	if !floatEq(egg.Pets[1].Chance, 0.3) || !floatEq(egg.Pets[2].Chance, 0.3) {
		t.Errorf("B,C = %v,%v, want 0.3,0.3", egg.Pets[1].Chance, egg.Pets[2].Chance)
	}
}

func TestRebalanceClampsChance(t *testing.T) {
	c := NewCatalog([]Egg{{
		Name: "E",
		Pets: []Pet{
			{Name: "A", Rarity: RarityCommon, Chance: 0.5, Value: 1},
			{Name: "B", Rarity: RarityCommon, Chance: 0.5, Value: 1},
		},
	}})

	if err := c.Rebalance("E", "A", 1.7); err != nil {
		t.Fatal(err)
	}
	egg, _ := c.Egg("E")
	if !floatEq(egg.Pets[0].Chance, 1.0) {
		t.Errorf("A = %v, want 1.0", egg.Pets[0].Chance)
	}
	if !floatEq(egg.Pets[1].Chance, 0.0) {
		t.Errorf("B = %v, want 0.0", egg.Pets[1].Chance)
	}
}

func TestRebalanceUnknownTargets(t *testing.T) {
	c := NewCatalog(defaultEggs())

	if err := c.Rebalance("No Such Egg", "Bunny", 0.5); !errors.Is(err, errInvalidTarget) {
		t.Errorf("unknown egg: err = %v, want INVALID_TARGET", err)
	}
	if err := c.Rebalance("Common Egg", "No Such Pet", 0.5); !errors.Is(err, errInvalidTarget) {
		t.Errorf("unknown pet: err = %v, want INVALID_TARGET", err)
	}
}

func TestRebalanceIsVisibleToSubsequentDraws(t *testing.T) {
	c := NewCatalog(defaultEggs())

	// Force everything onto the Golden Lab; any draw must now return it.
	if err := c.Rebalance("Common Egg", "Golden Lab", 1.0); err != nil {
		t.Fatal(err)
	}

	for _, r := range []float64{0.0, 0.5, 0.99} {
		pet, ok := c.PickPet("Common Egg", fixedRNG{r})
		if !ok {
			t.Fatal("egg not found")
		}
		if pet.Name != "Golden Lab" {
			t.Errorf("r=%v: drew %q, want Golden Lab", r, pet.Name)
		}
	}
}

func TestAllPetsDeduplicates(t *testing.T) {
	c := NewCatalog([]Egg{
		{Name: "E1", Pets: []Pet{{Name: "A", Rarity: RarityCommon, Chance: 1, Value: 1}}},
		{Name: "E2", Pets: []Pet{
			{Name: "A", Rarity: RarityCommon, Chance: 0.5, Value: 1},
			{Name: "B", Rarity: RarityRare, Chance: 0.5, Value: 9},
		}},
	})

	pets := c.AllPets()
	if len(pets) != 2 {
		t.Fatalf("got %d pets, want 2", len(pets))
	}
	if pets[0].Name != "A" || pets[1].Name != "B" {
		t.Errorf("pets = [%s, %s], want [A, B]", pets[0].Name, pets[1].Name)
	}
}

func TestEggReturnsCopy(t *testing.T) {
	c := NewCatalog(defaultEggs())

	egg, _ := c.Egg("Common Egg")
	egg.Pets[0].Chance = 0.99

	fresh, _ := c.Egg("Common Egg")
	if fresh.Pets[0].Chance == 0.99 {
		t.Error("caller mutation leaked into the catalog")
	}
}
