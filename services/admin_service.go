package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"snackwheel_server/models"
	"snackwheel_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AdminService provides the operator overrides: listing everything and
// force-deleting accounts or couples with the compensating link cleanup.
type AdminService struct {
	Dynamo      *DynamoService
	Accounts    *AccountService
	Notify      Notifier
	AdminEmails []string
}

// CoupleSummary is one admin table row.
type CoupleSummary struct {
	CoupleID  string `json:"coupleId"`
	Code      string `json:"code,omitempty"`
	User1Name string `json:"user1Name,omitempty"`
	User2Name string `json:"user2Name,omitempty"`
	Status    string `json:"status"` // "Solo" or "Connected"
	CreatedAt string `json:"createdAt"`
}

// Authorize checks the caller against account admin flags and the configured
// admin email list.
func (s *AdminService) Authorize(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("admin email header missing: %w", ErrUnauthorized)
	}

	for _, admin := range s.AdminEmails {
		if strings.EqualFold(admin, email) {
			return nil
		}
	}

	account, err := s.Accounts.GetAccountByEmail(ctx, email)
	if err == nil && account.IsAdmin {
		return nil
	}
	return fmt.Errorf("%s is not an admin: %w", email, ErrUnauthorized)
}

// ListAccounts returns every account record.
func (s *AdminService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	items, err := s.Dynamo.ScanAllItems(ctx, models.Account{}.TableName())
	if err != nil {
		return nil, err
	}

	accounts := []models.Account{}
	if err := attributevalue.UnmarshalListOfMaps(items, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}
	return accounts, nil
}

// ListCouples returns a summary row per couple.
func (s *AdminService) ListCouples(ctx context.Context) ([]CoupleSummary, error) {
	items, err := s.Dynamo.ScanAllItems(ctx, models.Couple{}.TableName())
	if err != nil {
		return nil, err
	}

	summaries := []CoupleSummary{}
	for _, item := range items {
		summary := CoupleSummary{
			CoupleID:  utils.ExtractString(item, "coupleId"),
			Code:      utils.ExtractString(item, "code"),
			User1Name: utils.ExtractString(item, "user1Name"),
			User2Name: utils.ExtractString(item, "user2Name"),
			CreatedAt: utils.ExtractString(item, "createdAt"),
			Status:    "Solo",
		}
		if utils.ExtractBool(item, "connected") {
			summary.Status = "Connected"
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ForceDeleteAccount removes an account and its pending invites in both
// directions. Any couple the account was in is left for ForceDeleteCouple.
func (s *AdminService) ForceDeleteAccount(ctx context.Context, accountID string) error {
	if _, err := s.Accounts.GetAccount(ctx, accountID); err != nil {
		return err
	}

	if err := s.Dynamo.DeleteItem(ctx, models.Account{}.TableName(), stringKey("accountId", accountID)); err != nil {
		return err
	}

	for _, index := range []struct{ name, attr string }{
		{models.InviteToIndex, "toAccountId"},
		{models.InviteFromIndex, "fromAccountId"},
	} {
		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.Invite{}.TableName(), index.name,
			index.attr+" = :id",
			map[string]types.AttributeValue{
				":id": &types.AttributeValueMemberS{Value: accountID},
			},
			nil, 0,
		)
		if err != nil {
			return err
		}

		var deletes []types.WriteRequest
		for _, item := range items {
			deletes = append(deletes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: stringKey("inviteId", utils.ExtractString(item, "inviteId")),
				},
			})
		}
		if len(deletes) > 0 {
			if err := s.Dynamo.BatchWriteItems(ctx, models.Invite{}.TableName(), deletes); err != nil {
				return err
			}
		}
	}

	log.Printf("Admin deleted account %s", accountID)
	return nil
}

// ForceDeleteCouple deletes a couple and clears the couple link on both
// members in one transaction, then purges the couple's snacks and spins.
func (s *AdminService) ForceDeleteCouple(ctx context.Context, coupleID string) error {
	item, err := s.Dynamo.GetItem(ctx, models.Couple{}.TableName(), stringKey("coupleId", coupleID))
	if err != nil {
		return err
	}

	var couple models.Couple
	if err := attributevalue.UnmarshalMap(item, &couple); err != nil {
		return fmt.Errorf("failed to unmarshal couple: %w", err)
	}

	txn := []types.TransactWriteItem{
		{Delete: &types.Delete{
			TableName: aws.String(couple.TableName()),
			Key:       stringKey("coupleId", coupleID),
		}},
	}

	var members []string
	for _, memberID := range []string{couple.User1ID, couple.User2ID} {
		if memberID == "" {
			continue
		}
		account, err := s.Accounts.GetAccount(ctx, memberID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if account.CoupleID != coupleID {
			continue // member has re-paired; their link is no longer ours
		}
		members = append(members, memberID)
		txn = append(txn, types.TransactWriteItem{Update: &types.Update{
			TableName:           aws.String(models.Account{}.TableName()),
			Key:                 stringKey("accountId", memberID),
			UpdateExpression:    aws.String("REMOVE coupleId"),
			ConditionExpression: aws.String("attribute_exists(accountId)"),
		}})
	}

	if err := s.Dynamo.TransactWriteItems(ctx, txn); err != nil {
		return err
	}

	if err := s.purgeCoupleRows(ctx, models.Snack{}.TableName(), "snackId", coupleID); err != nil {
		return err
	}
	if err := s.purgeCoupleRows(ctx, models.Spin{}.TableName(), "spunAt", coupleID); err != nil {
		return err
	}

	log.Printf("Admin deleted couple %s (cleared %d member links)", coupleID, len(members))
	for _, memberID := range members {
		notifyAccount(s.Notify, memberID, EventPairingChanged, ChangeEvent{CoupleID: coupleID})
	}
	return nil
}

// purgeCoupleRows batch-deletes every row of a couple-keyed table.
func (s *AdminService) purgeCoupleRows(ctx context.Context, tableName, sortAttr, coupleID string) error {
	items, err := s.Dynamo.QueryItemsWithOptions(ctx, tableName, "coupleId = :cid",
		map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: coupleID},
		},
		nil, 0, false,
	)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	var deletes []types.WriteRequest
	for _, item := range items {
		deletes = append(deletes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"coupleId": &types.AttributeValueMemberS{Value: coupleID},
					sortAttr:   &types.AttributeValueMemberS{Value: utils.ExtractString(item, sortAttr)},
				},
			},
		})
	}
	return s.Dynamo.BatchWriteItems(ctx, tableName, deletes)
}
