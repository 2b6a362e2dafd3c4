package timezones

import "context"

type Repository interface {
	Save(ctx context.Context, tz UserTimezone) error
	// Get devuelve ErrNotFound si el usuario no registró zona.
	Get(ctx context.Context, userID string) (UserTimezone, error)
	// GetMany omite los usuarios sin zona. El orden no está garantizado.
	GetMany(ctx context.Context, userIDs []string) ([]UserTimezone, error)
}
