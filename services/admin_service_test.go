package services

import (
	"context"
	"testing"

	"snackwheel_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairViaInvite wires two seeded accounts into a connected couple.
func pairViaInvite(t *testing.T, env *testEnv, fromID, toID, toEmail string) *models.Couple {
	t.Helper()
	invite, err := env.Pairing.SendInvite(context.Background(), fromID, toEmail)
	require.NoError(t, err)
	couple, err := env.Pairing.AcceptInvite(context.Background(), toID, invite.InviteID)
	require.NoError(t, err)
	return couple
}

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	// Flag Bob as admin directly on the record.
	_, err := env.Dynamo.UpdateItem(context.Background(), models.Account{}.TableName(),
		"SET isAdmin = :t",
		stringKey("accountId", "acct_2"),
		map[string]types.AttributeValue{":t": &types.AttributeValueMemberBOOL{Value: true}},
		nil,
	)
	require.NoError(t, err)

	assert.NoError(t, env.Admin.Authorize(context.Background(), "ops@example.com"), "configured admin email")
	assert.NoError(t, env.Admin.Authorize(context.Background(), "  OPS@Example.COM "), "config match is case-insensitive")
	assert.NoError(t, env.Admin.Authorize(context.Background(), "bob@example.com"), "account admin flag")

	assert.ErrorIs(t, env.Admin.Authorize(context.Background(), "alice@example.com"), ErrUnauthorized)
	assert.ErrorIs(t, env.Admin.Authorize(context.Background(), ""), ErrUnauthorized)
	assert.ErrorIs(t, env.Admin.Authorize(context.Background(), "nobody@example.com"), ErrUnauthorized)
}

func TestListAccountsAndCouples(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	env.seedAccount(t, "acct_3", "carol@example.com", "Carol")
	pairViaInvite(t, env, "acct_1", "acct_2", "bob@example.com")
	_, err := env.Pairing.StartSolo(context.Background(), "acct_3")
	require.NoError(t, err)

	accounts, err := env.Admin.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	couples, err := env.Admin.ListCouples(context.Background())
	require.NoError(t, err)
	require.Len(t, couples, 2)

	var solo, connected int
	for _, c := range couples {
		switch c.Status {
		case "Solo":
			solo++
		case "Connected":
			connected++
			assert.Equal(t, "Alice", c.User1Name)
			assert.Equal(t, "Bob", c.User2Name)
		}
	}
	assert.Equal(t, 1, solo)
	assert.Equal(t, 1, connected)
}

func TestForceDeleteCouple(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	couple := pairViaInvite(t, env, "acct_1", "acct_2", "bob@example.com")

	_, err := env.Snacks.AddSnack(context.Background(), couple.CoupleID, "Popcorn", 3.5, "acct_1", "Alice")
	require.NoError(t, err)
	_, err = env.Spins.RecordSpin(context.Background(), couple.CoupleID, "Popcorn", 3.5, "acct_2", "Bob")
	require.NoError(t, err)

	require.NoError(t, env.Admin.ForceDeleteCouple(context.Background(), couple.CoupleID))

	_, err = env.Pairing.GetCouple(context.Background(), couple.CoupleID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, id := range []string{"acct_1", "acct_2"} {
		account, err := env.Accounts.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, account.CoupleID, "link on %s must be cleared", id)
	}
	assert.Equal(t, 0, env.Fake.Count(models.Snack{}.TableName()))
	assert.Equal(t, 0, env.Fake.Count(models.Spin{}.TableName()))

	// Both members get a pairing push so their clients drop the couple view.
	assert.NotEmpty(t, env.Notify.roomEvents("account:acct_1"))
	assert.NotEmpty(t, env.Notify.roomEvents("account:acct_2"))
}

func TestForceDeleteCoupleSkipsRepairedMember(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	old := pairViaInvite(t, env, "acct_1", "acct_2", "bob@example.com")

	// Bob moves on to a solo session; his link now points elsewhere.
	require.NoError(t, env.Pairing.Disconnect(context.Background(), "acct_2"))
	fresh, err := env.Pairing.StartSolo(context.Background(), "acct_2")
	require.NoError(t, err)

	require.NoError(t, env.Admin.ForceDeleteCouple(context.Background(), old.CoupleID))

	account, err := env.Accounts.GetAccount(context.Background(), "acct_2")
	require.NoError(t, err)
	assert.Equal(t, fresh.CoupleID, account.CoupleID, "newer link must survive")
}

func TestForceDeleteAccountRemovesInvites(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	env.seedAccount(t, "acct_3", "carol@example.com", "Carol")

	_, err := env.Pairing.SendInvite(context.Background(), "acct_1", "bob@example.com")
	require.NoError(t, err)
	_, err = env.Pairing.SendInvite(context.Background(), "acct_3", "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, env.Admin.ForceDeleteAccount(context.Background(), "acct_1"))

	_, err = env.Accounts.GetAccount(context.Background(), "acct_1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, env.Fake.Count(models.Invite{}.TableName()), "invites in both directions purged")

	assert.ErrorIs(t, env.Admin.ForceDeleteAccount(context.Background(), "acct_missing"), ErrNotFound)
}
