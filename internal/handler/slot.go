package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// SlotHandler serves coach slot management and the public browse
// endpoint.
type SlotHandler struct {
    slots   *repository.SlotRepo
    coaches *repository.CoachRepo
}

// NewSlotHandler returns a handler bound to the given repositories.
func NewSlotHandler(slots *repository.SlotRepo, coaches *repository.CoachRepo) *SlotHandler {
    return &SlotHandler{slots: slots, coaches: coaches}
}

// coachOf resolves the coach profile of the authenticated user.
func (h *SlotHandler) coachOf(c echo.Context) (*model.Coach, error) {
    coach, err := h.coaches.GetByUserID(c.Request().Context(), currentUserID(c))
    if err != nil {
        return nil, echo.NewHTTPError(http.StatusForbidden, "no coach profile")
    }
    return coach, nil
}

type createSlotRequest struct {
    CourtID       uint64    `json:"court_id" validate:"required"`
    StartsAt      time.Time `json:"starts_at" validate:"required"`
    EndsAt        time.Time `json:"ends_at" validate:"required"`
    CourtBookedBy string    `json:"court_booked_by" validate:"required,oneof=STUDENT COACH"`
}

// Create publishes a single slot for the authenticated coach.
func (h *SlotHandler) Create(c echo.Context) error {
    var req createSlotRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    if !req.EndsAt.After(req.StartsAt) {
        return echo.NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
    }
    coach, err := h.coachOf(c)
    if err != nil {
        return err
    }
    slot := model.Slot{
        CoachID:       coach.ID,
        CourtID:       req.CourtID,
        StartsAt:      req.StartsAt.UTC(),
        EndsAt:        req.EndsAt.UTC(),
        CourtBookedBy: model.CourtBookedBy(req.CourtBookedBy),
    }
    if err := h.slots.Create(c.Request().Context(), &slot); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, slot)
}

type bulkEntry struct {
    Weekday     int    `json:"weekday" validate:"min=0,max=6"`
    Start       string `json:"start" validate:"required"`
    DurationMin int    `json:"duration_min" validate:"required,min=15,max=480"`
}

type bulkSlotsRequest struct {
    CourtID       uint64      `json:"court_id" validate:"required"`
    CourtBookedBy string      `json:"court_booked_by" validate:"required,oneof=STUDENT COACH"`
    FromDate      string      `json:"from_date" validate:"required"`
    Weeks         int         `json:"weeks" validate:"required,min=1,max=12"`
    Entries       []bulkEntry `json:"entries" validate:"required,min=1,max=50,dive"`
}

// CreateBulk expands a weekly template into concrete slots.  Each entry
// names a weekday and start time; the template is repeated for the given
// number of weeks starting at from_date.
func (h *SlotHandler) CreateBulk(c echo.Context) error {
    var req bulkSlotsRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    from, err := time.ParseInLocation("2006-01-02", req.FromDate, time.UTC)
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "from_date must be YYYY-MM-DD")
    }
    coach, err := h.coachOf(c)
    if err != nil {
        return err
    }

    var slots []model.Slot
    for week := 0; week < req.Weeks; week++ {
        for _, e := range req.Entries {
            start, err := time.ParseInLocation("15:04", e.Start, time.UTC)
            if err != nil {
                return echo.NewHTTPError(http.StatusBadRequest, "entry start must be HH:MM")
            }
            // First occurrence of the weekday on or after from_date.
            day := from.AddDate(0, 0, (e.Weekday-int(from.Weekday())+7)%7+week*7)
            startsAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
            slots = append(slots, model.Slot{
                CoachID:       coach.ID,
                CourtID:       req.CourtID,
                StartsAt:      startsAt,
                EndsAt:        startsAt.Add(time.Duration(e.DurationMin) * time.Minute),
                CourtBookedBy: model.CourtBookedBy(req.CourtBookedBy),
            })
        }
    }
    if err := h.slots.CreateBulk(c.Request().Context(), slots); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"created": len(slots)})
}

// ListOpen returns a coach's open future slots; public endpoint.
func (h *SlotHandler) ListOpen(c echo.Context) error {
    coachID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    slots, err := h.slots.ListOpenByCoach(c.Request().Context(), coachID, time.Now().UTC())
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}

// Delete removes one of the coach's own slots while it is unbooked.
func (h *SlotHandler) Delete(c echo.Context) error {
    slotID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    coach, err := h.coachOf(c)
    if err != nil {
        return err
    }
    if err := h.slots.DeleteUnbooked(c.Request().Context(), slotID, coach.ID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
