package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/repository"
    "github.com/iliyamo/coach-court-booking/internal/service"
)

// BookingHandler serves checkout, the booking lists and the lifecycle
// transitions.
type BookingHandler struct {
    checkout  *service.CheckoutService
    lifecycle *service.BookingLifecycle
    bookings  *repository.BookingRepo
    coaches   *repository.CoachRepo
}

// NewBookingHandler returns a handler bound to the booking services.
func NewBookingHandler(checkout *service.CheckoutService, lifecycle *service.BookingLifecycle,
    bookings *repository.BookingRepo, coaches *repository.CoachRepo) *BookingHandler {
    return &BookingHandler{checkout: checkout, lifecycle: lifecycle, bookings: bookings, coaches: coaches}
}

type checkoutRequest struct {
    Token         string   `json:"reservation_token" validate:"required"`
    SlotIDs       []uint64 `json:"slot_ids" validate:"required,min=1,max=20,dive,required"`
    PackageID     *uint64  `json:"package_id"`
    PricingPlanID *uint64  `json:"pricing_plan_id"`
    CoachProofRef string   `json:"coach_proof_ref"`
    CourtProofRef string   `json:"court_proof_ref"`
}

// Create runs the checkout transaction and returns the confirmation.
func (h *BookingHandler) Create(c echo.Context) error {
    var req checkoutRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    if req.PackageID != nil && req.PricingPlanID != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "package_id and pricing_plan_id are mutually exclusive")
    }
    result, err := h.checkout.CreateBookings(c.Request().Context(), service.CheckoutRequest{
        StudentID:     currentUserID(c),
        Token:         req.Token,
        SlotIDs:       req.SlotIDs,
        PackageID:     req.PackageID,
        PricingPlanID: req.PricingPlanID,
        CoachProofRef: req.CoachProofRef,
        CourtProofRef: req.CourtProofRef,
    })
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "confirmation_id": result.ConfirmationID,
        "bookings":        result.Bookings,
    })
}

// ListMine returns the authenticated student's bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
    out, err := h.bookings.ListByStudent(c.Request().Context(), currentUserID(c))
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// ListForCoach returns the authenticated coach's bookings.
func (h *BookingHandler) ListForCoach(c echo.Context) error {
    coach, err := h.coaches.GetByUserID(c.Request().Context(), currentUserID(c))
    if err != nil {
        return echo.NewHTTPError(http.StatusForbidden, "no coach profile")
    }
    out, err := h.bookings.ListByCoach(c.Request().Context(), coach.ID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Complete marks a booking delivered on behalf of its coach.
func (h *BookingHandler) Complete(c echo.Context) error {
    bookingID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    coach, err := h.coaches.GetByUserID(c.Request().Context(), currentUserID(c))
    if err != nil {
        return echo.NewHTTPError(http.StatusForbidden, "no coach profile")
    }
    booking, err := h.lifecycle.Complete(c.Request().Context(), bookingID, coach.ID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}

// Cancel cancels a booking on behalf of its student or coach.  The slot
// is released immediately.
func (h *BookingHandler) Cancel(c echo.Context) error {
    bookingID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    userID := currentUserID(c)

    // The caller may act as the booking's student, its coach or both;
    // the lifecycle matches against whichever identity fits.
    var coachID uint64
    coach, err := h.coaches.GetByUserID(c.Request().Context(), userID)
    switch {
    case err == nil:
        coachID = coach.ID
    case errors.Is(err, repository.ErrNotFound):
        // not a coach, fine
    default:
        return domainError(c, err)
    }

    booking, err := h.lifecycle.Cancel(c.Request().Context(), bookingID, userID, coachID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}
