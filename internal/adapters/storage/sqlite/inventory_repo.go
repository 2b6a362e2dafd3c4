package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"xiuh/internal/domain/inventory"

	"github.com/pkg/errors"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ?3 es el item id y ?6 su path JSON1.
const incrementSQL = `
	INSERT INTO inventories (user_id, kind, item_counts)
	VALUES (?1, ?2, json_object(?3, ?4))
	ON CONFLICT (user_id, kind) DO UPDATE
	SET item_counts = json_set(
		inventories.item_counts, ?6,
		COALESCE(json_extract(inventories.item_counts, ?6), 0) + ?4
	)
	WHERE ?5 <= 0
	   OR COALESCE(json_extract(inventories.item_counts, ?6), 0) > 0
	   OR (SELECT count(*) FROM json_each(inventories.item_counts) WHERE value > 0) < ?5
`

const decrementSQL = `
	UPDATE inventories
	SET item_counts = json_set(item_counts, ?3, json_extract(item_counts, ?3) - ?4)
	WHERE user_id = ?1 AND kind = ?2
	  AND COALESCE(json_extract(item_counts, ?3), 0) >= ?4
	RETURNING json_extract(item_counts, ?3)
`

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) Get(ctx context.Context, userID string, kind inventory.Kind) (map[string]int, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `
		SELECT item_counts FROM inventories WHERE user_id = ?1 AND kind = ?2
	`, userID, string(kind)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get inventory")
	}

	out := map[string]int{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errors.Wrap(err, "decode item counts")
	}
	return out, nil
}

func (r *InventoryRepo) Increment(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	return increment(ctx, r.db, userID, kind, itemID, qty, limit)
}

func (r *InventoryRepo) Decrement(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	return decrement(ctx, r.db, userID, kind, itemID, qty)
}

func (r *InventoryRepo) Move(ctx context.Context, userID, itemID string, qty int, from, to inventory.Kind, limit int) (int, error) {
	var remaining int
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		left, err := decrement(ctx, tx, userID, from, itemID, qty)
		if err != nil {
			return err
		}
		if err := increment(ctx, tx, userID, to, itemID, qty, limit); err != nil {
			return err
		}
		remaining = left
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *InventoryRepo) DeleteIfEmpty(ctx context.Context, userID string, kind inventory.Kind, itemID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inventories
		SET item_counts = json_remove(item_counts, ?3)
		WHERE user_id = ?1 AND kind = ?2
		  AND json_extract(item_counts, ?3) <= 0
	`, userID, string(kind), jsonPath(itemID))
	return errors.Wrap(err, "delete empty item")
}

func increment(ctx context.Context, q querier, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	res, err := q.ExecContext(ctx, incrementSQL, userID, string(kind), itemID, qty, limit, jsonPath(itemID))
	if err != nil {
		return errors.Wrap(err, "increment item")
	}
	return mustAffect(res, inventory.ErrCapacityExceeded)
}

func decrement(ctx context.Context, q querier, userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	var left int
	err := q.QueryRowContext(ctx, decrementSQL, userID, string(kind), jsonPath(itemID), qty).Scan(&left)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, inventory.ErrInsufficientQuantity
	}
	if err != nil {
		return 0, errors.Wrap(err, "decrement item")
	}
	return left, nil
}
