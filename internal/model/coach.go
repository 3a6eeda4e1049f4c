package model

import "time"

// Coach is a provider of paid sessions, either independent or a member
// of one or more academies.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – identity of the coach in the external auth system.
//  DisplayName       – public name.
//  HourlyRateCents   – coach fee per slot in cents.
//  SessionsCompleted – lifetime counter incremented on booking completion.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Coach struct {
    ID                uint64    // coaches.id
    UserID            uint64    // coaches.user_id
    DisplayName       string    // coaches.display_name
    HourlyRateCents   int64     // coaches.hourly_rate_cents
    SessionsCompleted uint32    // coaches.sessions_completed
    CreatedAt         time.Time // coaches.created_at
    UpdatedAt         time.Time // coaches.updated_at
}

// AcademyMember links a coach to an academy.  Only active memberships
// allow an academy package or plan to be redeemed with the coach.
//
// Fields:
//  AcademyID – academy the coach belongs to.
//  CoachID   – member coach.
//  Active    – whether the membership is currently active.
//  JoinedAt  – when the coach joined.
type AcademyMember struct {
    AcademyID uint64    // academy_members.academy_id
    CoachID   uint64    // academy_members.coach_id
    Active    bool      // academy_members.active
    JoinedAt  time.Time // academy_members.joined_at
}
