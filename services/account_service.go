package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"snackwheel_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AccountService keeps account records in sync with the identity provider and
// serves the lookups the pairing engine needs.
type AccountService struct {
	Dynamo *DynamoService
}

// IdentityTuple is what the identity provider hands us on sign-in. It is
// trusted as-is.
type IdentityTuple struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	PhotoURL  string `json:"photoURL"`
}

// SyncAccount upserts the identity tuple into the Accounts table. Existing
// accounts keep their coupleId and admin flag; only the identity fields and
// lastLoginAt move.
func (as *AccountService) SyncAccount(ctx context.Context, identity IdentityTuple) (*models.Account, error) {
	if identity.AccountID == "" || identity.Email == "" {
		return nil, fmt.Errorf("accountId and email are required: %w", ErrInvalidInput)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	_, err := as.GetAccount(ctx, identity.AccountID)
	if err == nil {
		updateExpression := "SET email = :email, #n = :name, photoURL = :photo, lastLoginAt = :now"
		attrs, err := as.Dynamo.UpdateItem(ctx, models.Account{}.TableName(), updateExpression,
			stringKey("accountId", identity.AccountID),
			map[string]types.AttributeValue{
				":email": &types.AttributeValueMemberS{Value: email},
				":name":  &types.AttributeValueMemberS{Value: identity.Name},
				":photo": &types.AttributeValueMemberS{Value: identity.PhotoURL},
				":now":   &types.AttributeValueMemberS{Value: now},
			},
			map[string]string{"#n": "name"},
		)
		if err != nil {
			return nil, err
		}
		var account models.Account
		if err := attributevalue.UnmarshalMap(attrs, &account); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account: %w", err)
		}
		return &account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	account := models.Account{
		AccountID:   identity.AccountID,
		Email:       email,
		Name:        identity.Name,
		PhotoURL:    identity.PhotoURL,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := as.Dynamo.PutItem(ctx, account.TableName(), account); err != nil {
		return nil, err
	}
	log.Printf("Created account %s (%s)", account.AccountID, account.Email)
	return &account, nil
}

// GetAccount retrieves an account by ID
func (as *AccountService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	item, err := as.Dynamo.GetItem(ctx, models.Account{}.TableName(), stringKey("accountId", accountID))
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// GetAccountByEmail looks an account up through the EmailIndex GSI. The email
// is lowercased before matching, the same normalization SyncAccount applies on
// write.
func (as *AccountService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", ErrInvalidInput)
	}

	items, err := as.Dynamo.QueryItemsWithIndex(ctx, models.Account{}.TableName(), models.AccountEmailIndex,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		nil,
		1,
	)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no account for email %s: %w", email, ErrNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(items[0], &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}
