package timezones

import "time"

// UserTimezone es la zona horaria registrada por un usuario.
type UserTimezone struct {
	UserID          string
	Timezone        string // IANA, p.ej. America/Mexico_City
	DisplayLocation string
	UpdatedAt       time.Time
}

// Location carga la zona. Ya fue validada al guardar.
func (u UserTimezone) Location() (*time.Location, error) {
	return time.LoadLocation(u.Timezone)
}
