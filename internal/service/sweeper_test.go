package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

func TestSweepPurgesOnlyExpired(t *testing.T) {
    clock := newTestClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
    store := newFakeStore()
    store.now = clock.Now
    store.reservations = []model.SlotReservation{
        {ID: 1, SlotID: 1, HolderID: 42, Token: "a", ExpiresAt: clock.Now().Add(-time.Minute)},
        {ID: 2, SlotID: 2, HolderID: 42, Token: "a", ExpiresAt: clock.Now().Add(-time.Second)},
        {ID: 3, SlotID: 3, HolderID: 43, Token: "b", ExpiresAt: clock.Now().Add(time.Minute)},
    }

    sw := NewSweeper(store, DefaultSweepInterval)
    purged, err := sw.Sweep(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(2), purged)
    require.Len(t, store.reservations, 1)
    assert.Equal(t, uint64(3), store.reservations[0].SlotID)

    // Nothing left to purge on the next pass.
    purged, err = sw.Sweep(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(0), purged)
}

func TestSweeperStartStop(t *testing.T) {
    store := newFakeStore()
    sw := NewSweeper(store, time.Hour)
    sw.Start()
    sw.Stop()
    sw.Stop() // safe to call twice
}
