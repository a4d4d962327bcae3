package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snackwheel_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// SnackService manages a couple's shared snack list. Every write is pushed to
// the couple room so both wheels stay in sync.
type SnackService struct {
	Dynamo *DynamoService
	Notify Notifier
}

// ListSnacks returns every snack for a couple, oldest first.
func (ss *SnackService) ListSnacks(ctx context.Context, coupleID string) ([]models.Snack, error) {
	items, err := ss.Dynamo.QueryItemsWithOptions(ctx, models.Snack{}.TableName(),
		"coupleId = :cid",
		map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: coupleID},
		},
		nil, 0, false,
	)
	if err != nil {
		return nil, err
	}

	snacks := []models.Snack{}
	if err := attributevalue.UnmarshalListOfMaps(items, &snacks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snacks: %w", err)
	}
	return snacks, nil
}

// AddSnack creates a snack, active (on the wheel) by default.
func (ss *SnackService) AddSnack(ctx context.Context, coupleID, name string, price float64, createdBy, createdByName string) (*models.Snack, error) {
	name = strings.TrimSpace(name)
	if coupleID == "" || name == "" {
		return nil, fmt.Errorf("coupleId and name are required: %w", ErrInvalidInput)
	}

	snack := models.Snack{
		CoupleID:      coupleID,
		SnackID:       uuid.NewString(),
		Name:          name,
		Price:         price,
		Active:        true,
		CreatedBy:     createdBy,
		CreatedByName: createdByName,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := ss.Dynamo.PutItem(ctx, snack.TableName(), snack); err != nil {
		return nil, err
	}

	notifyCouple(ss.Notify, coupleID, EventSnackChanged, ChangeEvent{Origin: createdBy, CoupleID: coupleID, Data: snack})
	return &snack, nil
}

// SetSnackActive moves a snack on or off the wheel.
func (ss *SnackService) SetSnackActive(ctx context.Context, coupleID, snackID string, active bool, origin string) error {
	key := map[string]types.AttributeValue{
		"coupleId": &types.AttributeValueMemberS{Value: coupleID},
		"snackId":  &types.AttributeValueMemberS{Value: snackID},
	}

	// Existence check first so a bad id reports NotFound, not a silent upsert.
	if _, err := ss.Dynamo.GetItem(ctx, models.Snack{}.TableName(), key); err != nil {
		return err
	}

	_, err := ss.Dynamo.UpdateItem(ctx, models.Snack{}.TableName(), "SET active = :active", key,
		map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: active},
		},
		nil,
	)
	if err != nil {
		return err
	}

	notifyCouple(ss.Notify, coupleID, EventSnackChanged, ChangeEvent{Origin: origin, CoupleID: coupleID})
	return nil
}

// DeleteSnack removes a snack permanently.
func (ss *SnackService) DeleteSnack(ctx context.Context, coupleID, snackID, origin string) error {
	key := map[string]types.AttributeValue{
		"coupleId": &types.AttributeValueMemberS{Value: coupleID},
		"snackId":  &types.AttributeValueMemberS{Value: snackID},
	}

	if _, err := ss.Dynamo.GetItem(ctx, models.Snack{}.TableName(), key); err != nil {
		return err
	}
	if err := ss.Dynamo.DeleteItem(ctx, models.Snack{}.TableName(), key); err != nil {
		return err
	}

	notifyCouple(ss.Notify, coupleID, EventSnackChanged, ChangeEvent{Origin: origin, CoupleID: coupleID})
	return nil
}
