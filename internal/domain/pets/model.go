package pets

import (
	"time"

	"xiuh/internal/domain/hunger"
)

// Profile es el registro por usuario. Solo puede apuntar a una mascota activa,
// y ActivePetID se setea una sola vez, junto con la creación de la mascota.
type Profile struct {
	UserID      string
	ActivePetID string

	LastDailyRewardAt *time.Time
}

func (p Profile) HasPet() bool { return p.ActivePetID != "" }

// Pet es la mascota adoptada por un usuario.
// Hunger es el valor base medido en LastFedAt; el valor actual se deriva con hunger.Current.
type Pet struct {
	ID     string
	UserID string

	SpeciesID string
	Name      string

	Hunger    float64
	LastFedAt time.Time
	AdoptedAt time.Time
}

// HungerStatus es la proyección de hambre para mostrar.
type HungerStatus struct {
	Value float64
	State hunger.State
}

// FeedResult es lo que devuelve Feed para mostrar al usuario.
type FeedResult struct {
	NewHunger float64
	NewState  hunger.State
}

const (
	NameMinLen = 1
	NameMaxLen = 20
)
