package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSpinAndRecentHistory(t *testing.T) {
	env := newTestEnv(t)
	const coupleID = "couple_TEST01_1"

	// Twelve spins; only the latest ten come back, newest first.
	for i := 0; i < 12; i++ {
		_, err := env.Spins.RecordSpin(context.Background(), coupleID, fmt.Sprintf("Snack %02d", i), float64(i), "acct_1", "Alice")
		require.NoError(t, err)
		time.Sleep(time.Millisecond) // distinct sort keys
	}

	spins, err := env.Spins.RecentSpins(context.Background(), coupleID)
	require.NoError(t, err)
	require.Len(t, spins, 10)
	assert.Equal(t, "Snack 11", spins[0].SnackName)
	assert.Equal(t, "Snack 02", spins[9].SnackName)

	// Each spin was pushed to the couple room for the partner's banner.
	events := env.Notify.roomEvents("couple:" + coupleID)
	require.Len(t, events, 12)
	assert.Equal(t, EventNewSpin, events[0].Event)
}

func TestRecordSpinValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Spins.RecordSpin(context.Background(), "", "Popcorn", 1, "acct_1", "Alice")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.Spins.RecordSpin(context.Background(), "couple_TEST01_1", "", 1, "acct_1", "Alice")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
