package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

func TestEnsureCanFund(t *testing.T) {
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    past := now.Add(-time.Hour)
    future := now.Add(24 * time.Hour)

    store := newFakeStore()
    store.members[[2]uint64{7, 100}] = true // coach 7 is active in academy 100

    base := model.BookingPackage{
        ID:            1,
        StudentID:     42,
        Kind:          model.PackageKindCoach,
        CoachID:       7,
        TotalSessions: 10,
        Status:        model.PackageStatusActive,
    }

    tests := []struct {
        name    string
        mutate  func(p *model.BookingPackage)
        coachID uint64
        wantErr error
    }{
        {"active coach package funds", func(p *model.BookingPackage) {}, 7, nil},
        {"wrong coach", func(p *model.BookingPackage) {}, 8, repository.ErrPackageNotEligible},
        {"pending package cannot fund", func(p *model.BookingPackage) {
            p.Status = model.PackageStatusPending
        }, 7, repository.ErrPackageNotEligible},
        {"rejected package cannot fund", func(p *model.BookingPackage) {
            p.Status = model.PackageStatusRejected
        }, 7, repository.ErrPackageNotEligible},
        {"expired package cannot fund", func(p *model.BookingPackage) {
            p.ExpiresAt = &past
        }, 7, repository.ErrPackageNotEligible},
        {"future expiry still funds", func(p *model.BookingPackage) {
            p.ExpiresAt = &future
        }, 7, nil},
        {"exhausted package", func(p *model.BookingPackage) {
            p.SessionsBooked = p.TotalSessions
        }, 7, repository.ErrPackageExhausted},
        {"academy package with active member", func(p *model.BookingPackage) {
            p.Kind = model.PackageKindAcademy
            p.CoachID = 0
            p.AcademyID = 100
        }, 7, nil},
        {"academy package with non-member coach", func(p *model.BookingPackage) {
            p.Kind = model.PackageKindAcademy
            p.CoachID = 0
            p.AcademyID = 100
        }, 8, repository.ErrPackageNotEligible},
    }

    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            pkg := base
            tc.mutate(&pkg)
            err := store.InTx(context.Background(), func(tx repository.StoreTx) error {
                return EnsureCanFund(context.Background(), tx, &pkg, tc.coachID, now)
            })
            if tc.wantErr == nil {
                require.NoError(t, err)
                return
            }
            assert.ErrorIs(t, err, tc.wantErr)
        })
    }
}
