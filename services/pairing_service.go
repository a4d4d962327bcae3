package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"snackwheel_server/models"
	"snackwheel_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// PairingService is the pairing engine: it owns every transition between the
// UNPAIRED, SOLO and PAIRED states. All multi-record steps go through a single
// TransactWriteItems call so a reader never observes a couple without both
// member links, or vice versa.
type PairingService struct {
	Dynamo   *DynamoService
	Accounts *AccountService
	Notify   Notifier
}

// GetCouple retrieves a couple by ID
func (ps *PairingService) GetCouple(ctx context.Context, coupleID string) (*models.Couple, error) {
	item, err := ps.Dynamo.GetItem(ctx, models.Couple{}.TableName(), stringKey("coupleId", coupleID))
	if err != nil {
		return nil, err
	}

	var couple models.Couple
	if err := attributevalue.UnmarshalMap(item, &couple); err != nil {
		return nil, fmt.Errorf("failed to unmarshal couple: %w", err)
	}
	return &couple, nil
}

// Snapshot recomputes the full pairing view for one account from fresh store
// reads: state, couple, partner, and pending invites in both directions.
func (ps *PairingService) Snapshot(ctx context.Context, accountID string) (*models.PairingSnapshot, error) {
	account, err := ps.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PairingSnapshot{
		State:          models.PairingStateUnpaired,
		InboundInvites: []models.Invite{},
		SentInvites:    []models.Invite{},
	}

	if account.CoupleID != "" {
		couple, err := ps.GetCouple(ctx, account.CoupleID)
		switch {
		case err == nil:
			snapshot.Couple = couple
			snapshot.Partner = couple.PartnerOf(accountID)
			if couple.User1ID != "" && couple.User2ID != "" {
				snapshot.State = models.PairingStatePaired
			} else {
				snapshot.State = models.PairingStateSolo
			}
		case errors.Is(err, ErrNotFound):
			// Dangling link (couple force-deleted); render as unpaired.
			log.Printf("Account %s links to missing couple %s", accountID, account.CoupleID)
		default:
			return nil, err
		}
	}

	inbound, err := ps.pendingInvites(ctx, models.InviteToIndex, "toAccountId", accountID)
	if err != nil {
		return nil, err
	}
	sent, err := ps.pendingInvites(ctx, models.InviteFromIndex, "fromAccountId", accountID)
	if err != nil {
		return nil, err
	}
	snapshot.InboundInvites = inbound
	snapshot.SentInvites = sent

	return snapshot, nil
}

// SendInvite creates a pending invite from one account to the account owning
// the target email. No account state changes until the invite is accepted.
func (ps *PairingService) SendInvite(ctx context.Context, fromAccountID, toEmail string) (*models.Invite, error) {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return nil, fmt.Errorf("email is required: %w", ErrInvalidInput)
	}

	from, err := ps.Accounts.GetAccount(ctx, fromAccountID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(from.Email, toEmail) {
		return nil, fmt.Errorf("cannot invite your own email: %w", ErrSelfReference)
	}

	target, err := ps.Accounts.GetAccountByEmail(ctx, toEmail)
	if err != nil {
		return nil, err
	}
	if target.AccountID == from.AccountID {
		return nil, fmt.Errorf("cannot invite your own account: %w", ErrSelfReference)
	}

	paired, _, err := ps.isPaired(ctx, target)
	if err != nil {
		return nil, err
	}
	if paired {
		return nil, fmt.Errorf("%s is already connected: %w", target.Email, ErrAlreadyConnected)
	}

	sent, err := ps.pendingInvites(ctx, models.InviteFromIndex, "fromAccountId", from.AccountID)
	if err != nil {
		return nil, err
	}
	for _, invite := range sent {
		if invite.ToAccountID == target.AccountID {
			return nil, fmt.Errorf("invite to %s already pending: %w", target.Email, ErrDuplicateInvite)
		}
	}

	invite := models.Invite{
		InviteID:      uuid.NewString(),
		FromAccountID: from.AccountID,
		FromName:      from.Name,
		FromPhoto:     from.PhotoURL,
		ToAccountID:   target.AccountID,
		Status:        models.InviteStatusPending,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := ps.Dynamo.PutItem(ctx, invite.TableName(), invite); err != nil {
		return nil, err
	}

	notifyAccount(ps.Notify, target.AccountID, EventPairingChanged, ChangeEvent{Origin: from.AccountID})
	return &invite, nil
}

// AcceptInvite consumes a pending invite and forms the couple in a single
// transaction: put couple, link both accounts, delete the invite. The delete
// carries a pending-status condition so a concurrent accept of the same invite
// cancels the losing transaction instead of racing.
func (ps *PairingService) AcceptInvite(ctx context.Context, accepterID, inviteID string) (*models.Couple, error) {
	invite, err := ps.getInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.ToAccountID != accepterID {
		return nil, fmt.Errorf("invite %s is not addressed to %s: %w", inviteID, accepterID, ErrUnauthorized)
	}

	inviter, err := ps.Accounts.GetAccount(ctx, invite.FromAccountID)
	if err != nil {
		return nil, err
	}
	accepter, err := ps.Accounts.GetAccount(ctx, accepterID)
	if err != nil {
		return nil, err
	}

	for _, account := range []*models.Account{inviter, accepter} {
		paired, _, err := ps.isPaired(ctx, account)
		if err != nil {
			return nil, err
		}
		if paired {
			return nil, fmt.Errorf("%s is already connected: %w", account.Email, ErrAlreadyConnected)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	couple := models.Couple{
		CoupleID:    utils.NewCoupleID(""),
		User1ID:     inviter.AccountID,
		User1Name:   inviter.Name,
		User1Photo:  inviter.PhotoURL,
		User2ID:     accepter.AccountID,
		User2Name:   accepter.Name,
		User2Photo:  accepter.PhotoURL,
		Connected:   true,
		CreatedAt:   now,
		ConnectedAt: now,
	}

	coupleItem, err := attributevalue.MarshalMap(couple)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal couple: %w", err)
	}

	txn := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(couple.TableName()),
			Item:                coupleItem,
			ConditionExpression: aws.String("attribute_not_exists(coupleId)"),
		}},
		linkAccountItem(inviter.AccountID, couple.CoupleID),
		linkAccountItem(accepter.AccountID, couple.CoupleID),
		deletePendingInviteItem(invite.InviteID),
	}

	if err := ps.Dynamo.TransactWriteItems(ctx, txn); err != nil {
		if isConditionFailure(err) {
			// The usual cause is a concurrent accept that consumed the invite
			// first; confirm by re-reading it.
			if _, readErr := ps.getInvite(ctx, inviteID); errors.Is(readErr, ErrNotFound) {
				return nil, fmt.Errorf("invite %s was already resolved: %w", inviteID, ErrNotFound)
			}
		}
		return nil, err
	}

	log.Printf("Couple %s formed from invite %s", couple.CoupleID, invite.InviteID)
	event := ChangeEvent{Origin: accepter.AccountID, CoupleID: couple.CoupleID}
	notifyAccount(ps.Notify, inviter.AccountID, EventPairingChanged, event)
	notifyAccount(ps.Notify, accepter.AccountID, EventPairingChanged, event)
	notifyCouple(ps.Notify, couple.CoupleID, EventPairingChanged, event)

	return &couple, nil
}

// DeclineInvite deletes a pending invite. Only the invited account may
// decline; no account state changes.
func (ps *PairingService) DeclineInvite(ctx context.Context, accountID, inviteID string) error {
	invite, err := ps.getInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.ToAccountID != accountID {
		return fmt.Errorf("invite %s is not addressed to %s: %w", inviteID, accountID, ErrUnauthorized)
	}

	if err := ps.Dynamo.DeleteItem(ctx, invite.TableName(), stringKey("inviteId", inviteID)); err != nil {
		return err
	}

	notifyAccount(ps.Notify, invite.FromAccountID, EventPairingChanged, ChangeEvent{Origin: accountID})
	return nil
}

// StartSolo creates a one-member couple and links the account to it. Calling
// it again while already solo returns the existing couple.
func (ps *PairingService) StartSolo(ctx context.Context, accountID string) (*models.Couple, error) {
	account, err := ps.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	paired, current, err := ps.isPaired(ctx, account)
	if err != nil {
		return nil, err
	}
	if paired {
		return nil, fmt.Errorf("account %s is already connected: %w", accountID, ErrAlreadyConnected)
	}
	if current != nil {
		return current, nil
	}

	couple := models.Couple{
		CoupleID:   utils.NewCoupleID(""),
		User1ID:    account.AccountID,
		User1Name:  account.Name,
		User1Photo: account.PhotoURL,
		Connected:  false,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := ps.createAndLink(ctx, couple, account.AccountID); err != nil {
		return nil, err
	}

	notifyAccount(ps.Notify, account.AccountID, EventPairingChanged, ChangeEvent{Origin: account.AccountID, CoupleID: couple.CoupleID})
	return &couple, nil
}

// GenerateCode returns a join code for the account's couple, creating the solo
// couple first when needed. An existing code is reused rather than reissued,
// so a partner holding the first code is never orphaned.
func (ps *PairingService) GenerateCode(ctx context.Context, accountID string) (*models.Couple, error) {
	account, err := ps.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	paired, current, err := ps.isPaired(ctx, account)
	if err != nil {
		return nil, err
	}
	if paired {
		return nil, fmt.Errorf("account %s is already connected: %w", accountID, ErrAlreadyConnected)
	}

	if current != nil {
		if current.Code != "" {
			return current, nil
		}
		code := utils.NewJoinCode()
		_, err := ps.Dynamo.UpdateItem(ctx, current.TableName(), "SET code = :code",
			stringKey("coupleId", current.CoupleID),
			map[string]types.AttributeValue{
				":code": &types.AttributeValueMemberS{Value: code},
			},
			nil,
		)
		if err != nil {
			return nil, err
		}
		current.Code = code
		return current, nil
	}

	code := utils.NewJoinCode()
	couple := models.Couple{
		CoupleID:   utils.NewCoupleID(code),
		Code:       code,
		User1ID:    account.AccountID,
		User1Name:  account.Name,
		User1Photo: account.PhotoURL,
		Connected:  false,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := ps.createAndLink(ctx, couple, account.AccountID); err != nil {
		return nil, err
	}

	notifyAccount(ps.Notify, account.AccountID, EventPairingChanged, ChangeEvent{Origin: account.AccountID, CoupleID: couple.CoupleID})
	return &couple, nil
}

// JoinWithCode fills the second slot of the couple holding the supplied code.
// The match is case-insensitive. The couple update and the joiner's account
// link land in one transaction, conditioned on the couple still being open.
func (ps *PairingService) JoinWithCode(ctx context.Context, accountID, code string) (*models.Couple, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", ErrInvalidInput)
	}

	account, err := ps.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	paired, _, err := ps.isPaired(ctx, account)
	if err != nil {
		return nil, err
	}
	if paired {
		return nil, fmt.Errorf("account %s is already connected: %w", accountID, ErrAlreadyConnected)
	}

	items, err := ps.Dynamo.QueryItemsWithIndex(ctx, models.Couple{}.TableName(), models.CoupleCodeIndex,
		"code = :code",
		map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
		nil,
		1,
	)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no couple holds code %s: %w", code, ErrInvalidCode)
	}

	var couple models.Couple
	if err := attributevalue.UnmarshalMap(items[0], &couple); err != nil {
		return nil, fmt.Errorf("failed to unmarshal couple: %w", err)
	}

	if couple.Connected {
		return nil, fmt.Errorf("code %s is already in use: %w", code, ErrAlreadyConnected)
	}
	if couple.User1ID == accountID {
		return nil, fmt.Errorf("cannot join your own code: %w", ErrSelfReference)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	txn := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName: aws.String(couple.TableName()),
			Key:       stringKey("coupleId", couple.CoupleID),
			UpdateExpression: aws.String(
				"SET user2Id = :id, user2Name = :name, user2Photo = :photo, connected = :true, connectedAt = :now"),
			ConditionExpression: aws.String("attribute_exists(coupleId) AND connected = :false"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":id":    &types.AttributeValueMemberS{Value: account.AccountID},
				":name":  &types.AttributeValueMemberS{Value: account.Name},
				":photo": &types.AttributeValueMemberS{Value: account.PhotoURL},
				":true":  &types.AttributeValueMemberBOOL{Value: true},
				":false": &types.AttributeValueMemberBOOL{Value: false},
				":now":   &types.AttributeValueMemberS{Value: now},
			},
		}},
		linkAccountItem(account.AccountID, couple.CoupleID),
	}

	if err := ps.Dynamo.TransactWriteItems(ctx, txn); err != nil {
		if isConditionFailure(err) {
			// A concurrent join won; report the couple as taken.
			return nil, fmt.Errorf("code %s was claimed concurrently: %w", code, ErrAlreadyConnected)
		}
		return nil, err
	}

	couple.User2ID = account.AccountID
	couple.User2Name = account.Name
	couple.User2Photo = account.PhotoURL
	couple.Connected = true
	couple.ConnectedAt = now

	log.Printf("Account %s joined couple %s by code", account.AccountID, couple.CoupleID)
	event := ChangeEvent{Origin: account.AccountID, CoupleID: couple.CoupleID}
	notifyAccount(ps.Notify, couple.User1ID, EventPairingChanged, event)
	notifyCouple(ps.Notify, couple.CoupleID, EventPairingChanged, event)

	return &couple, nil
}

// Disconnect clears the calling account's couple link. The partner's link and
// the couple record stay untouched; admins use ForceDeleteCouple for the
// both-sides teardown.
func (ps *PairingService) Disconnect(ctx context.Context, accountID string) error {
	account, err := ps.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.CoupleID == "" {
		return fmt.Errorf("account %s has no active couple: %w", accountID, ErrNotFound)
	}

	_, err = ps.Dynamo.UpdateItem(ctx, models.Account{}.TableName(), "REMOVE coupleId",
		stringKey("accountId", accountID), nil, nil)
	if err != nil {
		return err
	}

	notifyCouple(ps.Notify, account.CoupleID, EventPairingChanged, ChangeEvent{Origin: accountID, CoupleID: account.CoupleID})
	return nil
}

func (ps *PairingService) getInvite(ctx context.Context, inviteID string) (*models.Invite, error) {
	item, err := ps.Dynamo.GetItem(ctx, models.Invite{}.TableName(), stringKey("inviteId", inviteID))
	if err != nil {
		return nil, err
	}

	var invite models.Invite
	if err := attributevalue.UnmarshalMap(item, &invite); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invite: %w", err)
	}
	return &invite, nil
}

func (ps *PairingService) pendingInvites(ctx context.Context, indexName, keyAttr, accountID string) ([]models.Invite, error) {
	items, err := ps.Dynamo.QueryItemsWithIndex(ctx, models.Invite{}.TableName(), indexName,
		keyAttr+" = :id",
		map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: accountID},
		},
		nil,
		0,
	)
	if err != nil {
		return nil, err
	}

	invites := []models.Invite{}
	for _, item := range items {
		var invite models.Invite
		if err := attributevalue.UnmarshalMap(item, &invite); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invite: %w", err)
		}
		if invite.Status == models.InviteStatusPending {
			invites = append(invites, invite)
		}
	}
	return invites, nil
}

// isPaired reports whether the account's linked couple is fully connected. The
// couple itself is returned when the account is in a solo session so callers
// can reuse it. A dangling link counts as unpaired.
func (ps *PairingService) isPaired(ctx context.Context, account *models.Account) (bool, *models.Couple, error) {
	if account.CoupleID == "" {
		return false, nil, nil
	}
	couple, err := ps.GetCouple(ctx, account.CoupleID)
	if errors.Is(err, ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	if couple.Connected {
		return true, couple, nil
	}
	return false, couple, nil
}

// createAndLink writes a fresh couple and the creating account's link as one
// transaction. The account-side condition keeps a concurrent pairing from
// being overwritten.
func (ps *PairingService) createAndLink(ctx context.Context, couple models.Couple, accountID string) error {
	coupleItem, err := attributevalue.MarshalMap(couple)
	if err != nil {
		return fmt.Errorf("failed to marshal couple: %w", err)
	}

	txn := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(couple.TableName()),
			Item:                coupleItem,
			ConditionExpression: aws.String("attribute_not_exists(coupleId)"),
		}},
		{Update: &types.Update{
			TableName:           aws.String(models.Account{}.TableName()),
			Key:                 stringKey("accountId", accountID),
			UpdateExpression:    aws.String("SET coupleId = :cid"),
			ConditionExpression: aws.String("attribute_exists(accountId) AND attribute_not_exists(coupleId)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":cid": &types.AttributeValueMemberS{Value: couple.CoupleID},
			},
		}},
	}

	if err := ps.Dynamo.TransactWriteItems(ctx, txn); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("account %s pairing changed concurrently: %w", accountID, ErrAlreadyConnected)
		}
		return err
	}
	return nil
}

// linkAccountItem points an account at a couple. Prior solo couples are
// deliberately abandoned by the overwrite.
func linkAccountItem(accountID, coupleID string) types.TransactWriteItem {
	return types.TransactWriteItem{Update: &types.Update{
		TableName:           aws.String(models.Account{}.TableName()),
		Key:                 stringKey("accountId", accountID),
		UpdateExpression:    aws.String("SET coupleId = :cid"),
		ConditionExpression: aws.String("attribute_exists(accountId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: coupleID},
		},
	}}
}

// deletePendingInviteItem removes an invite only while it is still pending,
// which is what makes a double accept lose cleanly.
func deletePendingInviteItem(inviteID string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName:           aws.String(models.Invite{}.TableName()),
		Key:                 stringKey("inviteId", inviteID),
		ConditionExpression: aws.String("attribute_exists(inviteId) AND #s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: models.InviteStatusPending},
		},
	}}
}
