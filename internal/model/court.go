package model

import "time"

// Court is a physical venue where sessions take place.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – venue name.
//  Location  – optional free-form address.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Court struct {
    ID        uint64    // courts.id
    Name      string    // courts.name
    Location  *string   // courts.location (nullable)
    CreatedAt time.Time // courts.created_at
    UpdatedAt time.Time // courts.updated_at
}

// CourtFee is one entry of a court's time-dependent fee schedule.  The
// window is expressed as minutes from midnight UTC and is inclusive on
// both ends.  A slot whose start time falls inside the window is charged
// FeeCents; when no entry matches the fee is zero.
//
// Fields:
//  ID          – primary key identifier.
//  CourtID     – court this entry belongs to.
//  StartMinute – first minute of day covered (inclusive).
//  EndMinute   – last minute of day covered (inclusive).
//  FeeCents    – fee charged for slots starting inside the window.
type CourtFee struct {
    ID          uint64 // court_fees.id
    CourtID     uint64 // court_fees.court_id
    StartMinute uint16 // court_fees.start_minute
    EndMinute   uint16 // court_fees.end_minute
    FeeCents    int64  // court_fees.fee_cents
}

// Covers reports whether the fee window contains the given instant's
// time of day (UTC).
func (f CourtFee) Covers(t time.Time) bool {
    m := uint16(t.UTC().Hour()*60 + t.UTC().Minute())
    return f.StartMinute <= m && m <= f.EndMinute
}
