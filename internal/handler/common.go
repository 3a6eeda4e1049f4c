// Package handler contains the Echo HTTP handlers.  Handlers validate
// and decode requests, call into repositories and services, and map the
// domain sentinels onto HTTP status codes with machine-readable error
// codes so clients can distinguish retryable conflicts from bad input.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
    "github.com/iliyamo/coach-court-booking/internal/service"
)

var validate = validator.New()

// bindAndValidate decodes the JSON body into dst and runs the validator
// tags.  A failure is reported as 400 with the validation message.
func bindAndValidate(c echo.Context, dst interface{}) error {
    if err := c.Bind(dst); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
    }
    if err := validate.Struct(dst); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, err.Error())
    }
    return nil
}

// currentUserID extracts the authenticated user's numeric id from the
// JWT claims.  Returns model.GuestHolderID when the request is anonymous
// or the claim cannot be parsed.
func currentUserID(c echo.Context) uint64 {
    v := c.Get("user_id")
    switch t := v.(type) {
    case string:
        if id, err := strconv.ParseUint(t, 10, 64); err == nil {
            return id
        }
    case float64:
        if t > 0 {
            return uint64(t)
        }
    }
    return model.GuestHolderID
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
    }
    return id, nil
}

// errorCodes maps domain sentinels onto stable client-facing codes.
var errorCodes = map[error]string{
    repository.ErrSlotAlreadyBooked:  "SLOT_ALREADY_BOOKED",
    repository.ErrSlotHeldByOther:    "SLOT_HELD_BY_OTHER",
    repository.ErrSlotUnavailable:    "SLOT_UNAVAILABLE",
    repository.ErrReservationExpired: "RESERVATION_EXPIRED",
    repository.ErrPackageExhausted:   "PACKAGE_EXHAUSTED",
    repository.ErrPackageNotEligible: "PACKAGE_NOT_ELIGIBLE",
    repository.ErrPlanNotApplicable:  "PLAN_NOT_APPLICABLE",
    repository.ErrMissingProof:       "MISSING_PROOF",
    repository.ErrMixedBatch:         "MIXED_BATCH",
}

// domainError renders a domain failure.  Conflict-class sentinels get
// 409 with a code (and the offending slot ids when known) so clients can
// re-hold and retry; rule violations get 422; the rest map to the usual
// status codes.
func domainError(c echo.Context, err error) error {
    payload := echo.Map{"error": err.Error()}

    var conflict *service.SlotConflictError
    if errors.As(err, &conflict) {
        payload["slot_ids"] = conflict.SlotIDs
    }

    var status int
    switch {
    case errors.Is(err, repository.ErrSlotNotFound), errors.Is(err, repository.ErrNotFound):
        status = http.StatusNotFound
    case errors.Is(err, repository.ErrForbidden):
        status = http.StatusForbidden
    case errors.Is(err, repository.ErrSlotAlreadyBooked),
        errors.Is(err, repository.ErrSlotHeldByOther),
        errors.Is(err, repository.ErrSlotUnavailable),
        errors.Is(err, repository.ErrReservationExpired),
        errors.Is(err, repository.ErrPackageExhausted),
        errors.Is(err, repository.ErrConflict):
        status = http.StatusConflict
    case errors.Is(err, repository.ErrPackageNotEligible),
        errors.Is(err, repository.ErrPlanNotApplicable),
        errors.Is(err, repository.ErrMissingProof),
        errors.Is(err, repository.ErrMixedBatch):
        status = http.StatusUnprocessableEntity
    default:
        return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
    }

    for sentinel, code := range errorCodes {
        if errors.Is(err, sentinel) {
            payload["code"] = code
            break
        }
    }
    return c.JSON(status, payload)
}
