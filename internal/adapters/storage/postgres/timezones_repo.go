package postgres

import (
	"context"
	"database/sql"

	"xiuh/internal/domain/timezones"

	"github.com/pkg/errors"
)

type TimezonesRepo struct {
	db *sql.DB
}

func NewTimezonesRepo(db *sql.DB) *TimezonesRepo {
	return &TimezonesRepo{db: db}
}

func (r *TimezonesRepo) Save(ctx context.Context, tz timezones.UserTimezone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_timezones (user_id, timezone, display_location, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    display_location = EXCLUDED.display_location,
		    updated_at = EXCLUDED.updated_at
	`, tz.UserID, tz.Timezone, tz.DisplayLocation, tz.UpdatedAt)
	return errors.Wrap(err, "save timezone")
}

func (r *TimezonesRepo) Get(ctx context.Context, userID string) (timezones.UserTimezone, error) {
	var tz timezones.UserTimezone
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, timezone, display_location, updated_at
		FROM user_timezones WHERE user_id = $1
	`, userID).Scan(&tz.UserID, &tz.Timezone, &tz.DisplayLocation, &tz.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return timezones.UserTimezone{}, timezones.ErrNotFound
	}
	if err != nil {
		return timezones.UserTimezone{}, errors.Wrap(err, "get timezone")
	}
	tz.UpdatedAt = tz.UpdatedAt.UTC()
	return tz, nil
}

func (r *TimezonesRepo) GetMany(ctx context.Context, userIDs []string) ([]timezones.UserTimezone, error) {
	out := make([]timezones.UserTimezone, 0, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, timezone, display_location, updated_at
		FROM user_timezones WHERE user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get timezones")
	}
	defer rows.Close()

	for rows.Next() {
		var tz timezones.UserTimezone
		if err := rows.Scan(&tz.UserID, &tz.Timezone, &tz.DisplayLocation, &tz.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan timezone")
		}
		tz.UpdatedAt = tz.UpdatedAt.UTC()
		out = append(out, tz)
	}
	return out, errors.Wrap(rows.Err(), "iterate timezones")
}
