package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnackLifecycle(t *testing.T) {
	env := newTestEnv(t)
	const coupleID = "couple_TEST01_1"

	snack, err := env.Snacks.AddSnack(context.Background(), coupleID, "Popcorn", 3.5, "acct_1", "Alice")
	require.NoError(t, err)
	assert.True(t, snack.Active)

	snacks, err := env.Snacks.ListSnacks(context.Background(), coupleID)
	require.NoError(t, err)
	require.Len(t, snacks, 1)
	assert.Equal(t, "Popcorn", snacks[0].Name)

	// Take it off the wheel.
	require.NoError(t, env.Snacks.SetSnackActive(context.Background(), coupleID, snack.SnackID, false, "acct_1"))
	snacks, err = env.Snacks.ListSnacks(context.Background(), coupleID)
	require.NoError(t, err)
	assert.False(t, snacks[0].Active)

	require.NoError(t, env.Snacks.DeleteSnack(context.Background(), coupleID, snack.SnackID, "acct_1"))
	snacks, err = env.Snacks.ListSnacks(context.Background(), coupleID)
	require.NoError(t, err)
	assert.Empty(t, snacks)

	// Every write was pushed to the couple room.
	events := env.Notify.roomEvents("couple:" + coupleID)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, EventSnackChanged, e.Event)
		assert.Equal(t, "acct_1", e.Payload.(ChangeEvent).Origin)
	}
}

func TestSnackValidationAndMissingRows(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Snacks.AddSnack(context.Background(), "couple_TEST01_1", "  ", 1, "acct_1", "Alice")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = env.Snacks.SetSnackActive(context.Background(), "couple_TEST01_1", "missing", true, "acct_1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.Snacks.DeleteSnack(context.Background(), "couple_TEST01_1", "missing", "acct_1")
	assert.ErrorIs(t, err, ErrNotFound)
}
