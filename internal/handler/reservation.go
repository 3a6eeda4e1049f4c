package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/service"
)

// ReservationHandler serves the hold and release endpoints.  Both accept
// anonymous callers: guests hold under the guest identity and convert
// the hold after signing in by re-holding as themselves.
type ReservationHandler struct {
    holds *service.ReservationManager
}

// NewReservationHandler returns a handler bound to the reservation manager.
func NewReservationHandler(holds *service.ReservationManager) *ReservationHandler {
    return &ReservationHandler{holds: holds}
}

type holdRequest struct {
    SlotIDs []uint64 `json:"slot_ids" validate:"required,min=1,max=20,dive,required"`
}

// Hold claims the requested slots and returns the reservation token.
// Conflicts come back as 409 with a code and the contested slot ids.
func (h *ReservationHandler) Hold(c echo.Context) error {
    var req holdRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    result, err := h.holds.Hold(c.Request().Context(), currentUserID(c), req.SlotIDs)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "reservation_token": result.Token,
        "expires_at":        result.ExpiresAt,
    })
}

// Release drops the caller's holds on the given slots.
func (h *ReservationHandler) Release(c echo.Context) error {
    var req holdRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    if err := h.holds.Release(c.Request().Context(), currentUserID(c), req.SlotIDs); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
