package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"xiuh/internal/domain/inventory"

	"github.com/pkg/errors"
)

// querier es lo común entre *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Suma qty a la key. En un documento existente la escritura se condiciona a
// limit <= 0, a que la key ya tenga cantidad, o a que haya menos de limit tipos con cantidad > 0.
const incrementSQL = `
	INSERT INTO inventories (user_id, kind, item_counts)
	VALUES ($1, $2, jsonb_build_object($3::text, $4::int))
	ON CONFLICT (user_id, kind) DO UPDATE
	SET item_counts = jsonb_set(
		inventories.item_counts,
		ARRAY[$3::text],
		to_jsonb(COALESCE((inventories.item_counts ->> $3::text)::int, 0) + $4::int)
	)
	WHERE $5::int <= 0
	   OR COALESCE((inventories.item_counts ->> $3::text)::int, 0) > 0
	   OR (SELECT count(*) FROM jsonb_each_text(inventories.item_counts) AS e(key, value)
	       WHERE e.value::int > 0) < $5::int
`

const decrementSQL = `
	UPDATE inventories
	SET item_counts = jsonb_set(
		item_counts,
		ARRAY[$3::text],
		to_jsonb((item_counts ->> $3::text)::int - $4::int)
	)
	WHERE user_id = $1 AND kind = $2
	  AND COALESCE((item_counts ->> $3::text)::int, 0) >= $4::int
	RETURNING (item_counts ->> $3::text)::int
`

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) Get(ctx context.Context, userID string, kind inventory.Kind) (map[string]int, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT item_counts FROM inventories WHERE user_id = $1 AND kind = $2
	`, userID, string(kind)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get inventory")
	}

	out := map[string]int{}
	if err := json.Unmarshal(raw, &out); err != nil {
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
		SET item_counts = item_counts - $3::text
		WHERE user_id = $1 AND kind = $2
		  AND (item_counts ->> $3::text)::int <= 0
	`, userID, string(kind), itemID)
	return errors.Wrap(err, "delete empty item")
}

func increment(ctx context.Context, q querier, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	res, err := q.ExecContext(ctx, incrementSQL, userID, string(kind), itemID, qty, limit)
	if err != nil {
		return errors.Wrap(err, "increment item")
	}
	return mustAffect(res, inventory.ErrCapacityExceeded)
}

func decrement(ctx context.Context, q querier, userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	var left int
	err := q.QueryRowContext(ctx, decrementSQL, userID, string(kind), itemID, qty).Scan(&left)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, inventory.ErrInsufficientQuantity
	}
	if err != nil {
		return 0, errors.Wrap(err, "decrement item")
	}
	return left, nil
}
