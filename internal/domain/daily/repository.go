package daily

import (
	"context"
	"time"
)

// Repository guarda el sello del último reclamo en el perfil del usuario.
type Repository interface {
	// GetLastClaim devuelve ok=false si el perfil no existe o no tiene sello.
	GetLastClaim(ctx context.Context, userID string) (time.Time, bool, error)

	// RecordClaim escribe at como último reclamo, creando el perfil si falta,
	// condicionado a que no haya sello o a que el sello sea <= notAfter.
	// Si la condición falla devuelve ErrOnCooldown.
	RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error

	// RestoreClaim deshace un RecordClaim(at): vuelve a prev (o borra el sello si prev es nil)
	// solo si el sello sigue siendo at. Si ya cambió, no hace nada.
	RestoreClaim(ctx context.Context, userID string, at time.Time, prev *time.Time) error
}
