package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Rarity tiers, lowest to highest.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityLegendary = "Legendary"
	RarityMythical  = "Mythical"
	RarityDivine    = "Divine"
	RarityPrismatic = "Prismatic"
)

var validRarities = map[string]bool{
	RarityCommon:    true,
	RarityUncommon:  true,
	RarityRare:      true,
	RarityLegendary: true,
	RarityMythical:  true,
	RarityDivine:    true,
	RarityPrismatic: true,
}

type Pet struct {
	Name   string  `yaml:"name" json:"name"`
	Rarity string  `yaml:"rarity" json:"rarity"`
	Chance float64 `yaml:"chance" json:"chance"`
	Value  int64   `yaml:"value" json:"value"`
	Image  string  `yaml:"image" json:"image,omitempty"`
}

type Egg struct {
	Name  string `yaml:"name" json:"name"`
	Price int64  `yaml:"price" json:"price"`
	Image string `yaml:"image" json:"image,omitempty"`
	Pets  []Pet  `yaml:"pets" json:"pets"`
}

// Catalog owns the egg pools. Admin rebalances mutate it in place, so every
// draw after a rebalance sees the new weights. Callers never hold pool
// references of their own; they go through Egg/PickPet.
type Catalog struct {
	mu   sync.RWMutex
	eggs []Egg
}

func NewCatalog(eggs []Egg) *Catalog {
	return &Catalog{eggs: eggs}
}

// LoadCatalog reads the egg catalog from a YAML file. Any failure falls back
// to the built-in default catalog so the game still runs without config.
func LoadCatalog(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Println("Catalog: cannot read", path, "- using built-in fallback:", err)
		return NewCatalog(defaultEggs())
	}

	var eggs []Egg
	if err := yaml.Unmarshal(data, &eggs); err != nil {
		log.Println("Catalog: cannot parse", path, "- using built-in fallback:", err)
		return NewCatalog(defaultEggs())
	}
	if err := validateEggs(eggs); err != nil {
		log.Println("Catalog: invalid config in", path, "- using built-in fallback:", err)
		return NewCatalog(defaultEggs())
	}

	log.Println("Catalog: loaded", len(eggs), "eggs from", path)
	return NewCatalog(eggs)
}

func validateEggs(eggs []Egg) error {
	if len(eggs) == 0 {
		return errors.New("no eggs defined")
	}
	seen := map[string]bool{}
	for _, egg := range eggs {
		if egg.Name == "" {
			return errors.New("egg with empty name")
		}
		if seen[egg.Name] {
			return fmt.Errorf("duplicate egg %q", egg.Name)
		}
		seen[egg.Name] = true
		if egg.Price < 0 {
			return fmt.Errorf("egg %q has negative price", egg.Name)
		}
		if len(egg.Pets) == 0 {
			return fmt.Errorf("egg %q has no pets", egg.Name)
		}
		for _, p := range egg.Pets {
			if p.Name == "" {
				return fmt.Errorf("egg %q has a pet with empty name", egg.Name)
			}
			if p.Chance < 0 || p.Chance > 1 {
				return fmt.Errorf("pet %q chance %v out of [0,1]", p.Name, p.Chance)
			}
			if p.Value < 0 {
				return fmt.Errorf("pet %q has negative value", p.Name)
			}
			if !validRarities[p.Rarity] {
				return fmt.Errorf("pet %q has unknown rarity %q", p.Name, p.Rarity)
			}
		}
	}
	return nil
}

// defaultEggs is the fallback catalog used when no config file is available.
func defaultEggs() []Egg {
	return []Egg{
		{
			Name:  "Common Egg",
			Price: 0,
			Image: "assets/eggs/CommonEgg.webp",
			Pets: []Pet{
				{Name: "Bunny", Rarity: RarityCommon, Chance: 0.4, Value: 10, Image: "assets/pets/BunnyPet.webp"},
				{Name: "Dog", Rarity: RarityCommon, Chance: 0.4, Value: 12, Image: "assets/pets/DogPet.webp"},
				{Name: "Golden Lab", Rarity: RarityCommon, Chance: 0.2, Value: 8, Image: "assets/pets/GoldenLabPet.webp"},
			},
		},
		{
			Name:  "Uncommon Egg",
			Price: 150,
			Image: "assets/eggs/UncommonEgg.webp",
			Pets: []Pet{
				{Name: "BlackBunny", Rarity: RarityUncommon, Chance: 0.30, Value: 40, Image: "assets/pets/BlackBunny.webp"},
				{Name: "Chicken", Rarity: RarityUncommon, Chance: 0.30, Value: 60, Image: "assets/pets/ChickenPet.webp"},
				{Name: "Cat", Rarity: RarityUncommon, Chance: 0.30, Value: 90, Image: "assets/pets/CatPet.webp"},
				{Name: "Deer", Rarity: RarityUncommon, Chance: 0.10, Value: 300, Image: "assets/pets/DeerPet.webp"},
			},
		},
	}
}

// Egg returns a copy of the named egg pool.
func (c *Catalog) Egg(name string) (Egg, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, egg := range c.eggs {
		if egg.Name == name {
			return copyEgg(egg), true
		}
	}
	return Egg{}, false
}

// Eggs returns a copy of the whole catalog in its configured order.
func (c *Catalog) Eggs() []Egg {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Egg, 0, len(c.eggs))
	for _, egg := range c.eggs {
		out = append(out, copyEgg(egg))
	}
	return out
}

// AllPets returns every configured pet, deduplicated by name, in catalog
// order. This backs the admin give-pet picker.
func (c *Catalog) AllPets() []Pet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var pets []Pet
	seen := map[string]bool{}
	for _, egg := range c.eggs {
		for _, p := range egg.Pets {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			pets = append(pets, p)
		}
	}
	return pets
}

// FindPet looks a pet up by name across all eggs.
func (c *Catalog) FindPet(name string) (Pet, bool) {
	for _, p := range c.AllPets() {
		if p.Name == name {
			return p, true
		}
	}
	return Pet{}, false
}

// PickPet draws one pet from the named egg under the current weights.
func (c *Catalog) PickPet(eggName string, rng RandomSource) (Pet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, egg := range c.eggs {
		if egg.Name != eggName {
			continue
		}
		weights := make([]float64, len(egg.Pets))
		for i, p := range egg.Pets {
			weights[i] = p.Chance
		}
		return egg.Pets[weightedIndex(weights, rng)], true
	}
	return Pet{}, false
}

// Rebalance sets one pet's chance and redistributes the remainder across the
// egg's other pets proportionally to their prior weights, or evenly when the
// prior weights were all zero. The change is global: every draw after this
// call uses the new weights.
func (c *Catalog) Rebalance(eggName, petName string, newChance float64) error {
	if newChance < 0 {
		newChance = 0
	}
	if newChance > 1 {
		newChance = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for ei := range c.eggs {
		egg := &c.eggs[ei]
		if egg.Name != eggName {
			continue
		}
		target := -1
		for pi := range egg.Pets {
			if egg.Pets[pi].Name == petName {
				target = pi
				break
			}
		}
		if target < 0 {
			return errInvalidTarget
		}

		othersSum := 0.0
		others := 0
		for pi := range egg.Pets {
			if pi == target {
				continue
			}
			othersSum += egg.Pets[pi].Chance
			others++
		}

		remaining := 1 - newChance
		if remaining < 0 {
			remaining = 0
		}
		if othersSum > 0 {
			scale := remaining / othersSum
			for pi := range egg.Pets {
				if pi == target {
					continue
				}
				egg.Pets[pi].Chance *= scale
			}
		} else if others > 0 {
			even := remaining / float64(others)
			for pi := range egg.Pets {
				if pi == target {
					continue
				}
				egg.Pets[pi].Chance = even
			}
		}
		egg.Pets[target].Chance = newChance
		return nil
	}
	return errInvalidTarget
}

func copyEgg(egg Egg) Egg {
	out := egg
	out.Pets = append([]Pet(nil), egg.Pets...)
	return out
}
