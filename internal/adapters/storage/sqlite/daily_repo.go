package sqlite

import (
	"context"
	"database/sql"
	"time"

	"xiuh/internal/domain/daily"

	"github.com/pkg/errors"
)

type DailyRepo struct {
	db *sql.DB
}

func NewDailyRepo(db *sql.DB) *DailyRepo {
	return &DailyRepo{db: db}
}

func (r *DailyRepo) GetLastClaim(ctx context.Context, userID string) (time.Time, bool, error) {
	var last sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT last_daily_reward_at FROM profiles WHERE user_id = ?1
	`, userID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !last.Valid) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "get last claim")
	}
	return fromMillis(last.Int64), true, nil
}

func (r *DailyRepo) RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, last_daily_reward_at)
		VALUES (?1, ?2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_daily_reward_at = excluded.last_daily_reward_at
		WHERE profiles.last_daily_reward_at IS NULL
		   OR profiles.last_daily_reward_at <= ?3
	`, userID, toMillis(at), toMillis(notAfter))
	if err != nil {
		return errors.Wrap(err, "record claim")
	}
	return mustAffect(res, daily.ErrOnCooldown)
}

func (r *DailyRepo) RestoreClaim(ctx context.Context, userID string, at time.Time, prev *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET last_daily_reward_at = ?3
		WHERE user_id = ?1 AND last_daily_reward_at = ?2
	`, userID, toMillis(at), toNullMillis(prev))
	return errors.Wrap(err, "restore claim")
}
