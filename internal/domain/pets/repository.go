package pets

import (
	"context"
	"time"
)

// Repository es el contrato de persistencia de perfiles y mascotas.
// Cada método es una sola operación atómica en el store.
type Repository interface {
	// GetProfile devuelve ErrNotFound si el usuario no tiene perfil.
	GetProfile(ctx context.Context, userID string) (Profile, error)
	// GetPet devuelve ErrNotFound si la mascota no existe para ese usuario.
	GetPet(ctx context.Context, userID, petID string) (Pet, error)

	// CreateWithProfile crea la mascota y setea ActivePetID en el perfil (creándolo si falta)
	// en una sola transacción, condicionada a que el perfil no tenga mascota activa.
	// Si la condición falla devuelve ErrAlreadyHasPet y no aplica nada.
	CreateWithProfile(ctx context.Context, p Pet) error

	// UpdateName y UpdateHunger devuelven ErrNotFound si la mascota no existe.
	UpdateName(ctx context.Context, userID, petID, name string) error
	UpdateHunger(ctx context.Context, userID, petID string, value float64, lastFedAt time.Time) error
}
