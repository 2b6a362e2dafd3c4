package dynamo

import (
	"context"
	"time"

	"xiuh/internal/domain/pets"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

type PetsRepo struct {
	s *Store
}

func NewPetsRepo(s *Store) *PetsRepo {
	return &PetsRepo{s: s}
}

func (r *PetsRepo) GetProfile(ctx context.Context, userID string) (pets.Profile, error) {
	raw, err := r.s.get(ctx, userPK(userID), skProfile)
	if err != nil {
		return pets.Profile{}, err
	}
	if raw == nil {
		return pets.Profile{}, pets.ErrNotFound
	}

	var it profileItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return pets.Profile{}, errors.Wrap(err, "unmarshal profile")
	}
	p := pets.Profile{UserID: userID, ActivePetID: it.ActivePetID}
	if it.LastDailyRewardAt != nil {
		t := fromMillis(*it.LastDailyRewardAt)
		p.LastDailyRewardAt = &t
	}
	return p, nil
}

func (r *PetsRepo) GetPet(ctx context.Context, userID, petID string) (pets.Pet, error) {
	raw, err := r.s.get(ctx, userPK(userID), petSK(petID))
	if err != nil {
		return pets.Pet{}, err
	}
	if raw == nil {
		return pets.Pet{}, pets.ErrNotFound
	}

	var it petItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return pets.Pet{}, errors.Wrap(err, "unmarshal pet")
	}
	return pets.Pet{
		ID:        petID,
		UserID:    userID,
		SpeciesID: it.Species,
		Name:      it.Name,
		Hunger:    it.Hunger,
		LastFedAt: fromMillis(it.LastFedAt),
		AdoptedAt: fromMillis(it.AdoptedAt),
	}, nil
}

// CreateWithProfile escribe el pet y setea activePetId en una transacción.
// El perfil se actualiza (no se pisa) para conservar el sello del daily.
func (r *PetsRepo) CreateWithProfile(ctx context.Context, p pets.Pet) error {
	item, err := attributevalue.MarshalMap(petItem{
		PK:        userPK(p.UserID),
		SK:        petSK(p.ID),
		Species:   p.SpeciesID,
		Name:      p.Name,
		Hunger:    p.Hunger,
		LastFedAt: millis(p.LastFedAt),
		AdoptedAt: millis(p.AdoptedAt),
	})
	if err != nil {
		return errors.Wrap(err, "marshal pet")
	}

	_, err = r.s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.s.table),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(r.s.table),
					Key:                 key(userPK(p.UserID), skProfile),
					UpdateExpression:    aws.String("SET activePetId = :pid"),
					ConditionExpression: aws.String("attribute_not_exists(activePetId)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":pid": &types.AttributeValueMemberS{Value: p.ID},
					},
				},
			},
		},
	})
	if err == nil {
		return nil
	}
	if legs, ok := failedLegs(err); ok && len(legs) > 0 {
		return pets.ErrAlreadyHasPet
	}
	return errors.Wrap(err, "adopt pet")
}

func (r *PetsRepo) UpdateName(ctx context.Context, userID, petID, name string) error {
	return r.update(ctx, userID, petID, "SET #name = :name", map[string]string{"#name": "name"},
		map[string]types.AttributeValue{":name": &types.AttributeValueMemberS{Value: name}})
}

func (r *PetsRepo) UpdateHunger(ctx context.Context, userID, petID string, value float64, lastFedAt time.Time) error {
	h, err := attributevalue.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal hunger")
	}
	return r.update(ctx, userID, petID, "SET hunger = :h, lastFedAt = :t", nil,
		map[string]types.AttributeValue{":h": h, ":t": num(millis(lastFedAt))})
}

func (r *PetsRepo) update(ctx context.Context, userID, petID, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	_, err := r.s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.s.table),
		Key:                       key(userPK(userID), petSK(petID)),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if isConditionFailed(err) {
		return pets.ErrNotFound
	}
	return errors.Wrap(err, "update pet")
}
