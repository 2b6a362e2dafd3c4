package catalog

import (
	"fmt"
	"sort"
)

type Trait string

const (
	TraitEdible Trait = "edible"
)

// IDs de items conocidos. Son los valores que se guardan en los compartimentos.
const (
	OmelettePlain    = "OMELETTE_PLAIN"
	OmeletteMushroom = "OMELETTE_MUSHROOM"
	OmelettePepper   = "OMELETTE_PEPPER"
	SmoothStone      = "SMOOTH_STONE"
)

// ItemDef es la definición estática de un item.
type ItemDef struct {
	ID          string
	Name        string
	Description string
	Traits      []Trait

	// Solo aplica si el item es edible.
	HungerRestoration float64
}

func (d ItemDef) HasTrait(t Trait) bool {
	for _, tr := range d.Traits {
		if tr == t {
			return true
		}
	}
	return false
}

func (d ItemDef) Edible() bool { return d.HasTrait(TraitEdible) }

var items = map[string]ItemDef{
	OmelettePlain: {
		ID:                OmelettePlain,
		Name:              "Plain Omelette",
		Description:       "Simple and classic",
		Traits:            []Trait{TraitEdible},
		HungerRestoration: 20,
	},
	OmeletteMushroom: {
		ID:                OmeletteMushroom,
		Name:              "Mushroom Omelette",
		Description:       "Savory and subtle",
		Traits:            []Trait{TraitEdible},
		HungerRestoration: 20,
	},
	OmelettePepper: {
		ID:                OmelettePepper,
		Name:              "Pepper Omelette",
		Description:       "Vibrant and zesty",
		Traits:            []Trait{TraitEdible},
		HungerRestoration: 20,
	},
	SmoothStone: {
		ID:          SmoothStone,
		Name:        "Smooth Stone",
		Description: "Nice to hold, not to eat",
	},
}

// rewardPool son los items que puede dar el daily.
var rewardPool = []string{OmelettePlain, OmeletteMushroom, OmelettePepper}

// Item busca un item por id. ok=false si no existe.
func Item(id string) (ItemDef, bool) {
	d, ok := items[id]
	return d, ok
}

// Items devuelve el catálogo ordenado por id.
func Items() []ItemDef {
	out := make([]ItemDef, 0, len(items))
	for _, d := range items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RandomReward elige un item del pool de recompensas.
// intn debe devolver un entero en [0, n), p.ej. rand.IntN.
func RandomReward(intn func(n int) int) ItemDef {
	return items[rewardPool[intn(len(rewardPool))]]
}

// RewardPool devuelve una copia de los ids del pool.
func RewardPool() []string {
	return append([]string(nil), rewardPool...)
}

func validateItems() error {
	for id, d := range items {
		if d.ID != id {
			return fmt.Errorf("catalog: item key %q does not match id %q", id, d.ID)
		}
		if d.Name == "" {
			return fmt.Errorf("catalog: item %q has no name", id)
		}
		if d.Edible() && d.HungerRestoration <= 0 {
			return fmt.Errorf("catalog: edible item %q needs hunger restoration", id)
		}
	}
	if len(rewardPool) == 0 {
		return fmt.Errorf("catalog: empty reward pool")
	}
	for _, id := range rewardPool {
		if _, ok := items[id]; !ok {
			return fmt.Errorf("catalog: reward %q is not in the item catalog", id)
		}
	}
	return nil
}
