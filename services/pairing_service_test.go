package services

import (
	"context"
	"strings"
	"testing"

	"snackwheel_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendInviteCreatesPendingInvite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.AccountID, invite.FromAccountID)
	assert.Equal(t, bob.AccountID, invite.ToAccountID)
	assert.Equal(t, models.InviteStatusPending, invite.Status)

	// Neither account changed state.
	snapshot, err := env.Pairing.Snapshot(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStateUnpaired, snapshot.State)
	require.Len(t, snapshot.SentInvites, 1)

	bobView, err := env.Pairing.Snapshot(context.Background(), bob.AccountID)
	require.NoError(t, err)
	require.Len(t, bobView.InboundInvites, 1)
	assert.Equal(t, invite.InviteID, bobView.InboundInvites[0].InviteID)
}

func TestSendInviteFailures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "ghost@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty email", func(t *testing.T) {
		_, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("own email", func(t *testing.T) {
		_, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "Alice@Example.com")
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("duplicate pending invite", func(t *testing.T) {
		_, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
		require.NoError(t, err)
		_, err = env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
		assert.ErrorIs(t, err, ErrDuplicateInvite)
		assert.Equal(t, 1, env.Fake.Count("Invites"))
	})
}

func TestSendInviteToPairedAccountFails(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	carol := env.seedAccount(t, "acct_3", "carol@example.com", "Carol")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)
	_, err = env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	require.NoError(t, err)

	_, err = env.Pairing.SendInvite(context.Background(), carol.AccountID, "bob@example.com")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestAcceptInvitePairsBothAccounts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)

	couple, err := env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	require.NoError(t, err)
	assert.True(t, couple.Connected)
	assert.Equal(t, alice.AccountID, couple.User1ID)
	assert.Equal(t, bob.AccountID, couple.User2ID)
	assert.NotEmpty(t, couple.ConnectedAt)

	env.requireLinked(t, alice.AccountID, couple.CoupleID)
	env.requireLinked(t, bob.AccountID, couple.CoupleID)

	// The invite was consumed by the same transaction.
	assert.Equal(t, 0, env.Fake.Count("Invites"))

	aliceView, err := env.Pairing.Snapshot(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStatePaired, aliceView.State)
	require.NotNil(t, aliceView.Partner)
	assert.Equal(t, bob.AccountID, aliceView.Partner.AccountID)

	bobView, err := env.Pairing.Snapshot(context.Background(), bob.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStatePaired, bobView.State)
	require.NotNil(t, bobView.Partner)
	assert.Equal(t, alice.AccountID, bobView.Partner.AccountID)

	// Both sides were pushed to, with the accepter as the origin.
	aliceEvents := env.Notify.roomEvents("account:" + alice.AccountID)
	require.NotEmpty(t, aliceEvents)
	last := aliceEvents[len(aliceEvents)-1]
	assert.Equal(t, EventPairingChanged, last.Event)
	assert.Equal(t, bob.AccountID, last.Payload.(ChangeEvent).Origin)
}

func TestAcceptInviteIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)

	env.Fake.FailNextTransact = true
	_, err = env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	assert.ErrorIs(t, err, ErrTransactionFailed)

	// Nothing moved: no couple, both accounts unpaired, invite intact.
	assert.Equal(t, 0, env.Fake.Count("Couples"))
	assert.Equal(t, 1, env.Fake.Count("Invites"))
	for _, id := range []string{alice.AccountID, bob.AccountID} {
		account, err := env.Accounts.GetAccount(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, account.CoupleID)
	}
}

func TestAcceptInviteTwiceReportsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)

	_, err = env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	require.NoError(t, err)

	_, err = env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, env.Fake.Count("Couples"))
}

func TestAcceptInviteWrongAccount(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	carol := env.seedAccount(t, "acct_3", "carol@example.com", "Carol")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)

	_, err = env.Pairing.AcceptInvite(context.Background(), carol.AccountID, invite.InviteID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeclineInviteDeletesWithoutPairing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)

	require.NoError(t, env.Pairing.DeclineInvite(context.Background(), bob.AccountID, invite.InviteID))
	assert.Equal(t, 0, env.Fake.Count("Invites"))
	assert.Equal(t, 0, env.Fake.Count("Couples"))

	err = env.Pairing.DeclineInvite(context.Background(), bob.AccountID, invite.InviteID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartSoloCreatesSingleMemberCouple(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")

	couple, err := env.Pairing.StartSolo(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.False(t, couple.Connected)
	assert.Equal(t, alice.AccountID, couple.User1ID)
	assert.Empty(t, couple.User2ID)

	snapshot, err := env.Pairing.Snapshot(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStateSolo, snapshot.State)
	assert.Nil(t, snapshot.Partner)

	// Calling again returns the same session instead of stacking couples.
	again, err := env.Pairing.StartSolo(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, couple.CoupleID, again.CoupleID)
	assert.Equal(t, 1, env.Fake.Count("Couples"))
}

func TestGenerateCodeReusesExistingCode(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")

	first, err := env.Pairing.GenerateCode(context.Background(), alice.AccountID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)

	second, err := env.Pairing.GenerateCode(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.CoupleID, second.CoupleID)
	assert.Equal(t, 1, env.Fake.Count("Couples"))
}

func TestGenerateCodeOnExistingSoloSession(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")

	solo, err := env.Pairing.StartSolo(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Empty(t, solo.Code)

	withCode, err := env.Pairing.GenerateCode(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, solo.CoupleID, withCode.CoupleID)
	assert.NotEmpty(t, withCode.Code)
}

func TestJoinWithCodeIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	carol := env.seedAccount(t, "acct_3", "carol@example.com", "Carol")

	created, err := env.Pairing.GenerateCode(context.Background(), alice.AccountID)
	require.NoError(t, err)

	joined, err := env.Pairing.JoinWithCode(context.Background(), carol.AccountID, "  "+strings.ToLower(created.Code)+" ")
	require.NoError(t, err)
	assert.True(t, joined.Connected)
	assert.Equal(t, created.CoupleID, joined.CoupleID)
	assert.Equal(t, carol.AccountID, joined.User2ID)
	assert.NotEmpty(t, joined.ConnectedAt)

	env.requireLinked(t, alice.AccountID, created.CoupleID)
	env.requireLinked(t, carol.AccountID, created.CoupleID)

	// The code creator's device learns about the join via push.
	events := env.Notify.roomEvents("account:" + alice.AccountID)
	require.NotEmpty(t, events)
	assert.Equal(t, carol.AccountID, events[len(events)-1].Payload.(ChangeEvent).Origin)
}

func TestJoinWithCodeFailures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")
	dave := env.seedAccount(t, "acct_4", "dave@example.com", "Dave")

	created, err := env.Pairing.GenerateCode(context.Background(), dave.AccountID)
	require.NoError(t, err)

	t.Run("own code", func(t *testing.T) {
		_, err := env.Pairing.JoinWithCode(context.Background(), dave.AccountID, created.Code)
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.Pairing.JoinWithCode(context.Background(), alice.AccountID, "ZZZZZZ")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := env.Pairing.JoinWithCode(context.Background(), alice.AccountID, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("already connected couple", func(t *testing.T) {
		_, err := env.Pairing.JoinWithCode(context.Background(), alice.AccountID, created.Code)
		require.NoError(t, err)

		_, err = env.Pairing.JoinWithCode(context.Background(), bob.AccountID, created.Code)
		assert.ErrorIs(t, err, ErrAlreadyConnected)

		// The losing joiner stays unpaired and the couple keeps its members.
		account, err := env.Accounts.GetAccount(context.Background(), bob.AccountID)
		require.NoError(t, err)
		assert.Empty(t, account.CoupleID)

		couple, err := env.Pairing.GetCouple(context.Background(), created.CoupleID)
		require.NoError(t, err)
		assert.Equal(t, alice.AccountID, couple.User2ID)
	})
}

func TestAcceptAfterSoloOrphansPriorCouple(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	solo, err := env.Pairing.StartSolo(context.Background(), alice.AccountID)
	require.NoError(t, err)

	invite, err := env.Pairing.SendInvite(context.Background(), bob.AccountID, "alice@example.com")
	require.NoError(t, err)
	couple, err := env.Pairing.AcceptInvite(context.Background(), alice.AccountID, invite.InviteID)
	require.NoError(t, err)
	require.NotEqual(t, solo.CoupleID, couple.CoupleID)

	// Alice now points at the shared couple; the solo record is abandoned but
	// still present.
	env.requireLinked(t, alice.AccountID, couple.CoupleID)
	orphan, err := env.Pairing.GetCouple(context.Background(), solo.CoupleID)
	require.NoError(t, err)
	assert.Equal(t, alice.AccountID, orphan.User1ID)
	assert.False(t, orphan.Connected)
	assert.Equal(t, 2, env.Fake.Count("Couples"))
}

func TestDisconnectClearsOnlyOwnLink(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")
	bob := env.seedAccount(t, "acct_2", "bob@example.com", "Bob")

	invite, err := env.Pairing.SendInvite(context.Background(), alice.AccountID, "bob@example.com")
	require.NoError(t, err)
	couple, err := env.Pairing.AcceptInvite(context.Background(), bob.AccountID, invite.InviteID)
	require.NoError(t, err)

	require.NoError(t, env.Pairing.Disconnect(context.Background(), alice.AccountID))

	aliceView, err := env.Pairing.Snapshot(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStateUnpaired, aliceView.State)

	// The partner's link and the couple record are untouched.
	env.requireLinked(t, bob.AccountID, couple.CoupleID)

	err = env.Pairing.Disconnect(context.Background(), alice.AccountID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotToleratesDanglingCoupleLink(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedAccount(t, "acct_1", "alice@example.com", "Alice")

	solo, err := env.Pairing.StartSolo(context.Background(), alice.AccountID)
	require.NoError(t, err)

	// Remove the couple row out-of-band, leaving alice's link dangling.
	err = env.Dynamo.DeleteItem(context.Background(), models.Couple{}.TableName(),
		map[string]types.AttributeValue{
			"coupleId": &types.AttributeValueMemberS{Value: solo.CoupleID},
		})
	require.NoError(t, err)

	snapshot, err := env.Pairing.Snapshot(context.Background(), alice.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStateUnpaired, snapshot.State)
}
