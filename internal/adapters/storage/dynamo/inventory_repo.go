package dynamo

import (
	"context"
	"strconv"

	"xiuh/internal/domain/inventory"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

// size(itemMap) cuenta también keys en cero; ver purgeZeros.
const capacityCondition = "itemMap.#id > :zero OR size(itemMap) < :limit"

type InventoryRepo struct {
	s *Store
}

func NewInventoryRepo(s *Store) *InventoryRepo {
	return &InventoryRepo{s: s}
}

func (r *InventoryRepo) Get(ctx context.Context, userID string, kind inventory.Kind) (map[string]int, error) {
	raw, err := r.s.get(ctx, userPK(userID), inventorySK(string(kind)))
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	if raw == nil {
		return out, nil
	}

	var it inventoryItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return nil, errors.Wrap(err, "unmarshal inventory")
	}
	for k, v := range it.ItemMap {
		out[k] = v
	}
	return out, nil
}

func (r *InventoryRepo) Increment(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	if err := r.ensureMap(ctx, userID, kind); err != nil {
		return err
	}
	err := r.increment(ctx, userID, kind, itemID, qty, limit)
	if errors.Is(err, inventory.ErrCapacityExceeded) && r.purgeZeros(ctx, userID, kind) {
		err = r.increment(ctx, userID, kind, itemID, qty, limit)
	}
	return err
}

func (r *InventoryRepo) increment(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty, limit int) error {
	_, err := r.s.api.UpdateItem(ctx, r.incrementInput(userID, kind, itemID, qty, limit))
	if isConditionFailed(err) {
		return inventory.ErrCapacityExceeded
	}
	return errors.Wrap(err, "increment item")
}

func (r *InventoryRepo) Decrement(ctx context.Context, userID string, kind inventory.Kind, itemID string, qty int) (int, error) {
	in := r.decrementInput(userID, kind, itemID, qty)
	in.ReturnValues = types.ReturnValueUpdatedNew
	out, err := r.s.api.UpdateItem(ctx, in)
	if isConditionFailed(err) {
		return 0, inventory.ErrInsufficientQuantity
	}
	if err != nil {
		return 0, errors.Wrap(err, "decrement item")
	}
	return quantityIn(out.Attributes, itemID)
}

// Move: resta en from y suma en to en una sola TransactWriteItems.
// Leg 0 es la resta (cantidad), leg 1 la suma (capacidad).
func (r *InventoryRepo) Move(ctx context.Context, userID, itemID string, qty int, from, to inventory.Kind, limit int) (int, error) {
	if err := r.ensureMap(ctx, userID, to); err != nil {
		return 0, err
	}

	err := r.move(ctx, userID, itemID, qty, from, to, limit)
	if errors.Is(err, inventory.ErrCapacityExceeded) && r.purgeZeros(ctx, userID, to) {
		err = r.move(ctx, userID, itemID, qty, from, to, limit)
	}
	if err != nil {
		return 0, err
	}

	counts, err := r.Get(ctx, userID, from)
	if err != nil {
		return 0, err
	}
	return counts[itemID], nil
}

func (r *InventoryRepo) move(ctx context.Context, userID, itemID string, qty int, from, to inventory.Kind, limit int) error {
	sub := r.decrementInput(userID, from, itemID, qty)
	add := r.incrementInput(userID, to, itemID, qty, limit)

	_, err := r.s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 sub.TableName,
				Key:                       sub.Key,
				UpdateExpression:          sub.UpdateExpression,
				ConditionExpression:       sub.ConditionExpression,
				ExpressionAttributeNames:  sub.ExpressionAttributeNames,
				ExpressionAttributeValues: sub.ExpressionAttributeValues,
			}},
			{Update: &types.Update{
				TableName:                 add.TableName,
				Key:                       add.Key,
				UpdateExpression:          add.UpdateExpression,
				ConditionExpression:       add.ConditionExpression,
				ExpressionAttributeNames:  add.ExpressionAttributeNames,
				ExpressionAttributeValues: add.ExpressionAttributeValues,
			}},
		},
	})
	if err == nil {
		return nil
	}
	legs, ok := failedLegs(err)
	if !ok || len(legs) == 0 {
		return errors.Wrap(err, "move item")
	}
	if legs[0] == 0 {
		return inventory.ErrInsufficientQuantity
	}
	return inventory.ErrCapacityExceeded
}

func (r *InventoryRepo) DeleteIfEmpty(ctx context.Context, userID string, kind inventory.Kind, itemID string) error {
	_, err := r.s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.s.table),
		Key:                      key(userPK(userID), inventorySK(string(kind))),
		UpdateExpression:         aws.String("REMOVE itemMap.#id"),
		ConditionExpression:      aws.String("itemMap.#id <= :zero"),
		ExpressionAttributeNames: map[string]string{"#id": itemID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": num(0),
		},
	})
	if err == nil || isConditionFailed(err) {
		return nil
	}
	return errors.Wrap(err, "delete empty item")
}

// purgeZeros borra las keys en cero que dejó un cleanup fallido. size(itemMap)
// las cuenta, así que antes de dar la bolsa por llena se limpian y se reintenta.
// true si borró alguna.
func (r *InventoryRepo) purgeZeros(ctx context.Context, userID string, kind inventory.Kind) bool {
	counts, err := r.Get(ctx, userID, kind)
	if err != nil {
		return false
	}
	purged := false
	for id, q := range counts {
		if q > 0 {
			continue
		}
		if err := r.DeleteIfEmpty(ctx, userID, kind, id); err != nil {
			return false
		}
		purged = true
	}
	return purged
}

// ensureMap crea el documento con itemMap vacío si falta; SET itemMap.x falla
// si el mapa padre no existe.
func (r *InventoryRepo) ensureMap(ctx context.Context, userID string, kind inventory.Kind) error {
	_, err := r.s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.s.table),
		Key:              key(userPK(userID), inventorySK(string(kind))),
		UpdateExpression: aws.String("SET itemMap = if_not_exists(itemMap, :empty)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
		},
	})
	return errors.Wrap(err, "ensure item map")
}

func (r *InventoryRepo) incrementInput(userID string, kind inventory.Kind, itemID string, qty, limit int) *dynamodb.UpdateItemInput {
	in := &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.s.table),
		Key:                      key(userPK(userID), inventorySK(string(kind))),
		UpdateExpression:         aws.String("SET itemMap.#id = if_not_exists(itemMap.#id, :zero) + :q"),
		ExpressionAttributeNames: map[string]string{"#id": itemID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": num(0),
			":q":    num(int64(qty)),
		},
	}
	if limit > 0 {
		in.ConditionExpression = aws.String(capacityCondition)
		in.ExpressionAttributeValues[":limit"] = num(int64(limit))
	}
	return in
}

func (r *InventoryRepo) decrementInput(userID string, kind inventory.Kind, itemID string, qty int) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.s.table),
		Key:                      key(userPK(userID), inventorySK(string(kind))),
		UpdateExpression:         aws.String("SET itemMap.#id = itemMap.#id - :q"),
		ConditionExpression:      aws.String("itemMap.#id >= :q"),
		ExpressionAttributeNames: map[string]string{"#id": itemID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": num(int64(qty)),
		},
	}
}

// quantityIn lee itemMap.<itemID> de los atributos devueltos por UPDATED_NEW.
func quantityIn(attrs map[string]types.AttributeValue, itemID string) (int, error) {
	m, ok := attrs[attrItemMap].(*types.AttributeValueMemberM)
	if !ok {
		return 0, errors.New("updated item map missing from response")
	}
	n, ok := m.Value[itemID].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.Errorf("updated quantity for %s missing from response", itemID)
	}
	v, err := strconv.Atoi(n.Value)
	return v, errors.Wrap(err, "parse quantity")
}
