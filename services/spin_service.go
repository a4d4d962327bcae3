package services

import (
	"context"
	"fmt"
	"time"

	"snackwheel_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// recentSpinLimit caps the history both clients render.
const recentSpinLimit = 10

// SpinService records wheel results and serves recent history so the partner's
// client can show who spun what.
type SpinService struct {
	Dynamo *DynamoService
	Notify Notifier
}

// RecordSpin stores one wheel result and pushes it to the couple room.
func (ss *SpinService) RecordSpin(ctx context.Context, coupleID, snackName string, price float64, spunBy, spunByName string) (*models.Spin, error) {
	if coupleID == "" || snackName == "" {
		return nil, fmt.Errorf("coupleId and snackName are required: %w", ErrInvalidInput)
	}

	spin := models.Spin{
		CoupleID:   coupleID,
		SpunAt:     time.Now().UTC().Format(time.RFC3339Nano),
		SpinID:     uuid.NewString(),
		SnackName:  snackName,
		Price:      price,
		SpunBy:     spunBy,
		SpunByName: spunByName,
	}
	if err := ss.Dynamo.PutItem(ctx, spin.TableName(), spin); err != nil {
		return nil, err
	}

	notifyCouple(ss.Notify, coupleID, EventNewSpin, ChangeEvent{Origin: spunBy, CoupleID: coupleID, Data: spin})
	return &spin, nil
}

// RecentSpins returns the latest spins, newest first.
func (ss *SpinService) RecentSpins(ctx context.Context, coupleID string) ([]models.Spin, error) {
	items, err := ss.Dynamo.QueryItemsWithOptions(ctx, models.Spin{}.TableName(),
		"coupleId = :cid",
		map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: coupleID},
		},
		nil, recentSpinLimit, true,
	)
	if err != nil {
		return nil, err
	}

	spins := []models.Spin{}
	if err := attributevalue.UnmarshalListOfMaps(items, &spins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spins: %w", err)
	}
	return spins, nil
}
