package dynamo

import (
	"context"
	"time"

	"xiuh/internal/domain/daily"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

// El sello del daily vive en el item Profile del usuario.
type DailyRepo struct {
	s *Store
}

func NewDailyRepo(s *Store) *DailyRepo {
	return &DailyRepo{s: s}
}

func (r *DailyRepo) GetLastClaim(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := r.s.get(ctx, userPK(userID), skProfile)
	if err != nil {
		return time.Time{}, false, err
	}
	if raw == nil {
		return time.Time{}, false, nil
	}

	var it profileItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return time.Time{}, false, errors.Wrap(err, "unmarshal profile")
	}
	if it.LastDailyRewardAt == nil {
		return time.Time{}, false, nil
	}
	return fromMillis(*it.LastDailyRewardAt), true, nil
}

// RecordClaim usa UpdateItem, que crea el perfil si no existe.
func (r *DailyRepo) RecordClaim(ctx context.Context, userID string, at, notAfter time.Time) error {
	_, err := r.s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.table),
		Key:                 key(userPK(userID), skProfile),
		UpdateExpression:    aws.String("SET lastDailyRewardAt = :at"),
		ConditionExpression: aws.String("attribute_not_exists(lastDailyRewardAt) OR lastDailyRewardAt <= :notAfter"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":at":       num(millis(at)),
			":notAfter": num(millis(notAfter)),
		},
	})
	if isConditionFailed(err) {
		return daily.ErrOnCooldown
	}
	return errors.Wrap(err, "record claim")
}

func (r *DailyRepo) RestoreClaim(ctx context.Context, userID string, at time.Time, prev *time.Time) error {
	in := &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.table),
		Key:                 key(userPK(userID), skProfile),
		UpdateExpression:    aws.String("REMOVE lastDailyRewardAt"),
		ConditionExpression: aws.String("lastDailyRewardAt = :at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":at": num(millis(at)),
		},
	}
	if prev != nil {
		in.UpdateExpression = aws.String("SET lastDailyRewardAt = :prev")
		in.ExpressionAttributeValues[":prev"] = num(millis(*prev))
	}

	_, err := r.s.api.UpdateItem(ctx, in)
	if err == nil || isConditionFailed(err) {
		return nil
	}
	return errors.Wrap(err, "restore claim")
}
