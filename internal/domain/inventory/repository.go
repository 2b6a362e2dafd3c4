package inventory

import "context"

// Repository es el contrato de persistencia de compartimentos.
// Los invariantes (capacidad, cantidades no negativas, movimientos atómicos)
// los garantiza el store con escrituras condicionales, no el service.
type Repository interface {
	// Get devuelve el mapa item -> cantidad. Mapa vacío si el documento no existe.
	Get(ctx context.Context, userID string, kind Kind) (map[string]int, error)

	// Increment suma qty a itemID, creando documento/key si faltan.
	// Con limit > 0 la escritura se condiciona a que itemID ya esté presente
	// o a que haya menos de limit tipos distintos; si no, ErrCapacityExceeded.
	Increment(ctx context.Context, userID string, kind Kind, itemID string, qty, limit int) error

	// Decrement resta qty condicionado a cantidad >= qty (si no, ErrInsufficientQuantity).
	// Devuelve la cantidad restante.
	Decrement(ctx context.Context, userID string, kind Kind, itemID string, qty int) (int, error)

	// Move resta en from y suma en to en una sola transacción.
	// ErrInsufficientQuantity si falla la resta, ErrCapacityExceeded si falla la suma (limit de to).
	// Devuelve la cantidad restante en from.
	Move(ctx context.Context, userID, itemID string, qty int, from, to Kind, limit int) (int, error)

	// DeleteIfEmpty borra la key solo si su cantidad es <= 0. Si no aplica, no hace nada.
	DeleteIfEmpty(ctx context.Context, userID string, kind Kind, itemID string) error
}
