package dynamo

import (
	"context"

	"xiuh/internal/domain/timezones"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

const (
	// BatchGetItem acepta hasta 100 keys por llamada.
	batchGetLimit = 100
	// Reintentos de UnprocessedKeys por lote antes de rendirse.
	maxUnprocessedRetries = 3
)

type TimezonesRepo struct {
	s *Store
}

func NewTimezonesRepo(s *Store) *TimezonesRepo {
	return &TimezonesRepo{s: s}
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
	}
}

func (r *TimezonesRepo) Save(ctx context.Context, tz timezones.UserTimezone) error {
	item, err := attributevalue.MarshalMap(timezoneItem{
		UserID:          tz.UserID,
		Timezone:        tz.Timezone,
		DisplayLocation: tz.DisplayLocation,
		UpdatedAt:       millis(tz.UpdatedAt),
	})
	if err != nil {
		return errors.Wrap(err, "marshal timezone")
	}
	_, err = r.s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.s.timezoneTable),
		Item:      item,
	})
	return errors.Wrap(err, "save timezone")
}

func (r *TimezonesRepo) Get(ctx context.Context, userID string) (timezones.UserTimezone, error) {
	out, err := r.s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.s.timezoneTable),
		Key:       userKey(userID),
	})
	if err != nil {
		return timezones.UserTimezone{}, errors.Wrap(err, "get timezone")
	}
	if out.Item == nil {
		return timezones.UserTimezone{}, timezones.ErrNotFound
	}
	return decodeTimezone(out.Item)
}

func (r *TimezonesRepo) GetMany(ctx context.Context, userIDs []string) ([]timezones.UserTimezone, error) {
	out := make([]timezones.UserTimezone, 0, len(userIDs))

	for start := 0; start < len(userIDs); start += batchGetLimit {
		end := min(start+batchGetLimit, len(userIDs))

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range userIDs[start:end] {
			keys = append(keys, userKey(id))
		}
		request := map[string]types.KeysAndAttributes{
			r.s.timezoneTable: {Keys: keys},
		}

		for attempt := 0; len(request) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				return nil, errors.New("batch get timezones: unprocessed keys after retries")
			}
			resp, err := r.s.api.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, errors.Wrap(err, "batch get timezones")
			}
			for _, raw := range resp.Responses[r.s.timezoneTable] {
				tz, err := decodeTimezone(raw)
				if err != nil {
					return nil, err
				}
				out = append(out, tz)
			}
			request = resp.UnprocessedKeys
		}
	}
	return out, nil
}

func decodeTimezone(raw map[string]types.AttributeValue) (timezones.UserTimezone, error) {
	var it timezoneItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return timezones.UserTimezone{}, errors.Wrap(err, "unmarshal timezone")
	}
	return timezones.UserTimezone{
		UserID:          it.UserID,
		Timezone:        it.Timezone,
		DisplayLocation: it.DisplayLocation,
		UpdatedAt:       fromMillis(it.UpdatedAt),
	}, nil
}
