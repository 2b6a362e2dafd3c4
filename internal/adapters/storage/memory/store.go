package memory

import (
	"sync"
	"time"

	"xiuh/internal/domain/inventory"
	"xiuh/internal/domain/pets"
	"xiuh/internal/domain/timezones"
)

type profileRow struct {
	activePetID string
	lastDaily   *time.Time
}

type petKey struct {
	userID string
	petID  string
}

type compartmentKey struct {
	userID string
	kind   inventory.Kind
}

// Store es el backing store en memoria compartido por todos los repos.
// Un solo lock: las operaciones multi-documento (adopción, move) quedan atómicas.
type Store struct {
	mu sync.RWMutex

	profiles     map[string]profileRow
	pets         map[petKey]pets.Pet
	compartments map[compartmentKey]map[string]int
	timezones    map[string]timezones.UserTimezone
}

func NewStore() *Store {
	return &Store{
		profiles:     make(map[string]profileRow),
		pets:         make(map[petKey]pets.Pet),
		compartments: make(map[compartmentKey]map[string]int),
		timezones:    make(map[string]timezones.UserTimezone),
	}
}
