package postgres

import (
	"context"
	"database/sql"
	"time"

	"xiuh/internal/domain/pets"

	"github.com/pkg/errors"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) GetProfile(ctx context.Context, userID string) (pets.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, COALESCE(active_pet_id, ''), last_daily_reward_at
		FROM profiles
		WHERE user_id = $1
	`, userID)

	var p pets.Profile
	var last sql.NullTime
	if err := row.Scan(&p.UserID, &p.ActivePetID, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Profile{}, pets.ErrNotFound
		}
		return pets.Profile{}, errors.Wrap(err, "get profile")
	}
	p.LastDailyRewardAt = fromNullTime(last)
	return p, nil
}

func (r *PetsRepo) GetPet(ctx context.Context, userID, petID string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, species_id, name, hunger, last_fed_at, adopted_at
		FROM pets
		WHERE user_id = $1 AND id = $2
	`, userID, petID)

	var p pets.Pet
	if err := row.Scan(&p.ID, &p.UserID, &p.SpeciesID, &p.Name, &p.Hunger, &p.LastFedAt, &p.AdoptedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, errors.Wrap(err, "get pet")
	}
	p.LastFedAt = p.LastFedAt.UTC()
	p.AdoptedAt = p.AdoptedAt.UTC()
	return p, nil
}

// CreateWithProfile: el upsert del perfil solo aplica si active_pet_id sigue NULL.
// Si no afecta filas, otra adopción ganó y se hace rollback del pet.
func (r *PetsRepo) CreateWithProfile(ctx context.Context, p pets.Pet) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, active_pet_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE
			SET active_pet_id = EXCLUDED.active_pet_id
			WHERE profiles.active_pet_id IS NULL
		`, p.UserID, p.ID)
		if err != nil {
			return errors.Wrap(err, "claim profile")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return pets.ErrAlreadyHasPet
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pets (user_id, id, species_id, name, hunger, last_fed_at, adopted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.UserID, p.ID, p.SpeciesID, p.Name, p.Hunger, p.LastFedAt, p.AdoptedAt)
		if isUniqueViolation(err) {
			return pets.ErrAlreadyHasPet
		}
		return errors.Wrap(err, "insert pet")
	})
}

func (r *PetsRepo) UpdateName(ctx context.Context, userID, petID, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets SET name = $3
		WHERE user_id = $1 AND id = $2
	`, userID, petID, name)
	if err != nil {
		return errors.Wrap(err, "update pet name")
	}
	return mustAffect(res, pets.ErrNotFound)
}

func (r *PetsRepo) UpdateHunger(ctx context.Context, userID, petID string, value float64, lastFedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets SET hunger = $3, last_fed_at = $4
		WHERE user_id = $1 AND id = $2
	`, userID, petID, value, lastFedAt)
	if err != nil {
		return errors.Wrap(err, "update pet hunger")
	}
	return mustAffect(res, pets.ErrNotFound)
}

func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
