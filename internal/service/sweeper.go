package service

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// DefaultSweepInterval is how often the background sweep purges expired
// reservations when no interval is configured.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically deletes expired reservations to bound table
// growth.  Expiry has no other side effect: an expired hold simply stops
// blocking other holders, so a missed sweep costs storage, not
// correctness.  The sweeper has an explicit start/stop lifecycle instead
// of a package-level singleton so tests can trigger Sweep directly.
type Sweeper struct {
    store    repository.Store
    interval time.Duration

    stopOnce sync.Once
    stop     chan struct{}
    done     chan struct{}
}

// NewSweeper builds a sweeper.  A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(store repository.Store, interval time.Duration) *Sweeper {
    if interval <= 0 {
        interval = DefaultSweepInterval
    }
    return &Sweeper{
        store:    store,
        interval: interval,
        stop:     make(chan struct{}),
        done:     make(chan struct{}),
    }
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
    go func() {
        defer close(s.done)
        ticker := time.NewTicker(s.interval)
        defer ticker.Stop()
        for {
            select {
            case <-ticker.C:
                if n, err := s.Sweep(context.Background()); err != nil {
                    log.Printf("sweeper: purge failed: %v", err)
                } else if n > 0 {
                    log.Printf("sweeper: purged %d expired reservations", n)
                }
            case <-s.stop:
                return
            }
        }
    }()
}

// Stop halts the loop and waits for it to exit.  Safe to call twice.
func (s *Sweeper) Stop() {
    s.stopOnce.Do(func() { close(s.stop) })
    <-s.done
}

// Sweep purges expired reservations once and returns how many rows were
// removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
    var purged int64
    err := s.store.InTx(ctx, func(tx repository.StoreTx) error {
        n, err := tx.DeleteExpiredReservations(ctx)
        purged = n
        return err
    })
    return purged, err
}
