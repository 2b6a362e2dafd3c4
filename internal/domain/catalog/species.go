package catalog

import (
	"fmt"
	"sort"
)

type Category string

const (
	CategoryMammal Category = "mammal"
	CategoryAvian  Category = "avian"
	CategoryPlant  Category = "plant"
)

// SpeciesDef es la definición estática de una especie adoptable.
type SpeciesDef struct {
	ID       string
	Name     string
	Category Category
}

var species = map[string]SpeciesDef{
	"cat":      {ID: "cat", Name: "Cat", Category: CategoryMammal},
	"dog":      {ID: "dog", Name: "Dog", Category: CategoryMammal},
	"bird":     {ID: "bird", Name: "Bird", Category: CategoryAvian},
	"rabbit":   {ID: "rabbit", Name: "Rabbit", Category: CategoryMammal},
	"hamster":  {ID: "hamster", Name: "Hamster", Category: CategoryMammal},
	"seedling": {ID: "seedling", Name: "Seedling", Category: CategoryPlant},
}

func Species(id string) (SpeciesDef, bool) {
	d, ok := species[id]
	return d, ok
}

// AllSpecies devuelve las especies ordenadas por id.
func AllSpecies() []SpeciesDef {
	out := make([]SpeciesDef, 0, len(species))
	for _, d := range species {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validateSpecies() error {
	for id, d := range species {
		if d.ID != id || d.Name == "" || d.Category == "" {
			return fmt.Errorf("catalog: invalid species %q", id)
		}
	}
	return nil
}

func init() {
	if err := validateItems(); err != nil {
		panic(err)
	}
	if err := validateSpecies(); err != nil {
		panic(err)
	}
}
