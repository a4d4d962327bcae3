package services

import (
	"context"
	"sync"
	"testing"

	"snackwheel_server/models"
	"snackwheel_server/services/dynamotest"

	"github.com/stretchr/testify/require"
)

// recordedEvent captures one Notifier push for assertions.
type recordedEvent struct {
	Room    string // "account:<id>" or "couple:<id>"
	Event   string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingNotifier) ToAccount(accountID, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: "account:" + accountID, Event: event, Payload: payload})
}

func (r *recordingNotifier) ToCouple(coupleID, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: "couple:" + coupleID, Event: event, Payload: payload})
}

func (r *recordingNotifier) roomEvents(room string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.Room == room {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	Fake     *dynamotest.FakeClient
	Dynamo   *DynamoService
	Accounts *AccountService
	Pairing  *PairingService
	Snacks   *SnackService
	Spins    *SpinService
	Admin    *AdminService
	Notify   *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := dynamotest.NewFakeClient()
	dynamo := &DynamoService{Client: fake}
	notify := &recordingNotifier{}
	accounts := &AccountService{Dynamo: dynamo}

	return &testEnv{
		Fake:     fake,
		Dynamo:   dynamo,
		Accounts: accounts,
		Pairing:  &PairingService{Dynamo: dynamo, Accounts: accounts, Notify: notify},
		Snacks:   &SnackService{Dynamo: dynamo, Notify: notify},
		Spins:    &SpinService{Dynamo: dynamo, Notify: notify},
		Admin: &AdminService{
			Dynamo:      dynamo,
			Accounts:    accounts,
			Notify:      notify,
			AdminEmails: []string{"ops@example.com"},
		},
		Notify: notify,
	}
}

func (env *testEnv) seedAccount(t *testing.T, accountID, email, name string) *models.Account {
	t.Helper()
	account, err := env.Accounts.SyncAccount(context.Background(), IdentityTuple{
		AccountID: accountID,
		Email:     email,
		Name:      name,
		PhotoURL:  "https://img.example.com/" + accountID,
	})
	require.NoError(t, err)
	return account
}

// requireLinked asserts the referential invariant: the account points at the
// couple and occupies exactly one slot.
func (env *testEnv) requireLinked(t *testing.T, accountID, coupleID string) {
	t.Helper()
	account, err := env.Accounts.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.Equal(t, coupleID, account.CoupleID)

	couple, err := env.Pairing.GetCouple(context.Background(), coupleID)
	require.NoError(t, err)
	inSlot1 := couple.User1ID == accountID
	inSlot2 := couple.User2ID == accountID
	require.True(t, inSlot1 != inSlot2, "account %s must occupy exactly one slot of %s", accountID, coupleID)
}
