package sqlite

import (
	"context"
	"database/sql"
	"strings"

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
		VALUES (?1, ?2, ?3, ?4)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = excluded.timezone,
		    display_location = excluded.display_location,
		    updated_at = excluded.updated_at
	`, tz.UserID, tz.Timezone, tz.DisplayLocation, toMillis(tz.UpdatedAt))
	return errors.Wrap(err, "save timezone")
}

func (r *TimezonesRepo) Get(ctx context.Context, userID string) (timezones.UserTimezone, error) {
	out, err := r.GetMany(ctx, []string{userID})
	if err != nil {
		return timezones.UserTimezone{}, err
	}
	if len(out) == 0 {
		return timezones.UserTimezone{}, timezones.ErrNotFound
	}
	return out[0], nil
}

func (r *TimezonesRepo) GetMany(ctx context.Context, userIDs []string) ([]timezones.UserTimezone, error) {
	out := make([]timezones.UserTimezone, 0, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(userIDs))
	marks := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		args = append(args, id)
		marks = append(marks, "?")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, timezone, display_location, updated_at
		FROM user_timezones
		WHERE user_id IN (`+strings.Join(marks, ", ")+`)
	`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "get timezones")
	}
	defer rows.Close()

	for rows.Next() {
		var tz timezones.UserTimezone
		var updated int64
		if err := rows.Scan(&tz.UserID, &tz.Timezone, &tz.DisplayLocation, &updated); err != nil {
			return nil, errors.Wrap(err, "scan timezone")
		}
		tz.UpdatedAt = fromMillis(updated)
		out = append(out, tz)
	}
	return out, errors.Wrap(rows.Err(), "iterate timezones")
}
