package sqlite

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
	var p pets.Profile
	var last sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, COALESCE(active_pet_id, ''), last_daily_reward_at
		FROM profiles WHERE user_id = ?1
	`, userID).Scan(&p.UserID, &p.ActivePetID, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Profile{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Profile{}, errors.Wrap(err, "get profile")
	}
	if last.Valid {
		t := fromMillis(last.Int64)
		p.LastDailyRewardAt = &t
	}
	return p, nil
}

func (r *PetsRepo) GetPet(ctx context.Context, userID, petID string) (pets.Pet, error) {
	var p pets.Pet
	var fed, adopted int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, species_id, name, hunger, last_fed_at, adopted_at
		FROM pets WHERE user_id = ?1 AND id = ?2
	`, userID, petID).Scan(&p.ID, &p.UserID, &p.SpeciesID, &p.Name, &p.Hunger, &fed, &adopted)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Pet{}, errors.Wrap(err, "get pet")
	}
	p.LastFedAt = fromMillis(fed)
	p.AdoptedAt = fromMillis(adopted)
	return p, nil
}

// CreateWithProfile: mismo esquema que en postgres; el upsert condicionado del perfil
// decide quién gana.
func (r *PetsRepo) CreateWithProfile(ctx context.Context, p pets.Pet) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, active_pet_id)
			VALUES (?1, ?2)
			ON CONFLICT (user_id) DO UPDATE
			SET active_pet_id = excluded.active_pet_id
			WHERE profiles.active_pet_id IS NULL
		`, p.UserID, p.ID)
		if err != nil {
			return errors.Wrap(err, "claim profile")
		}
		if err := mustAffect(res, pets.ErrAlreadyHasPet); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pets (user_id, id, species_id, name, hunger, last_fed_at, adopted_at)
			VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
		`, p.UserID, p.ID, p.SpeciesID, p.Name, p.Hunger, toMillis(p.LastFedAt), toMillis(p.AdoptedAt))
		if isConstraintViolation(err) {
			return pets.ErrAlreadyHasPet
		}
		return errors.Wrap(err, "insert pet")
	})
}

func (r *PetsRepo) UpdateName(ctx context.Context, userID, petID, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets SET name = ?3 WHERE user_id = ?1 AND id = ?2
	`, userID, petID, name)
	if err != nil {
		return errors.Wrap(err, "update pet name")
	}
	return mustAffect(res, pets.ErrNotFound)
}

func (r *PetsRepo) UpdateHunger(ctx context.Context, userID, petID string, value float64, lastFedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets SET hunger = ?3, last_fed_at = ?4 WHERE user_id = ?1 AND id = ?2
	`, userID, petID, value, toMillis(lastFedAt))
	if err != nil {
		return errors.Wrap(err, "update pet hunger")
	}
	return mustAffect(res, pets.ErrNotFound)
}
