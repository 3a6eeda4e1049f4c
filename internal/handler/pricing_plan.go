package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// PricingPlanHandler serves discount-rule management for coaches and
// academies.
type PricingPlanHandler struct {
    plans   *repository.PricingPlanRepo
    coaches *repository.CoachRepo
}

// NewPricingPlanHandler returns a handler bound to the given repositories.
func NewPricingPlanHandler(plans *repository.PricingPlanRepo, coaches *repository.CoachRepo) *PricingPlanHandler {
    return &PricingPlanHandler{plans: plans, coaches: coaches}
}

// planOwner resolves the calling owner from the JWT role: coaches own
// plans through their profile id, academies through their subject id.
func (h *PricingPlanHandler) planOwner(c echo.Context) (model.PlanOwnerKind, uint64, error) {
    switch role, _ := c.Get("role").(string); role {
    case "COACH":
        coach, err := h.coaches.GetByUserID(c.Request().Context(), currentUserID(c))
        if err != nil {
            return "", 0, echo.NewHTTPError(http.StatusForbidden, "no coach profile")
        }
        return model.PlanOwnerCoach, coach.ID, nil
    case "ACADEMY":
        return model.PlanOwnerAcademy, currentUserID(c), nil
    }
    return "", 0, echo.NewHTTPError(http.StatusForbidden, "forbidden")
}

type createPlanRequest struct {
    Kind             string   `json:"kind" validate:"required,oneof=FIRST_TIME PACKAGE SEASONAL CUSTOM"`
    Percentage       *float64 `json:"percentage" validate:"omitempty,gt=0,lte=100"`
    FixedCents       *int64   `json:"fixed_cents" validate:"omitempty,gt=0"`
    SessionsRequired uint32   `json:"sessions_required"`
    ValidFrom        *string  `json:"valid_from"`
    ValidTo          *string  `json:"valid_to"`
}

// Create registers a new pricing plan for the calling owner.  Exactly
// one of percentage and fixed_cents must be set; seasonal plans need a
// non-inverted date range; package plans need a session minimum.
func (h *PricingPlanHandler) Create(c echo.Context) error {
    var req createPlanRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    if (req.Percentage == nil) == (req.FixedCents == nil) {
        return echo.NewHTTPError(http.StatusBadRequest, "exactly one of percentage and fixed_cents must be set")
    }
    plan := model.PricingPlan{
        Kind:             req.Kind,
        Percentage:       req.Percentage,
        FixedCents:       req.FixedCents,
        SessionsRequired: req.SessionsRequired,
        Active:           true,
    }
    switch req.Kind {
    case model.DiscountKindSeasonal:
        if req.ValidFrom == nil || req.ValidTo == nil {
            return echo.NewHTTPError(http.StatusBadRequest, "seasonal plans need valid_from and valid_to")
        }
        from, err1 := time.ParseInLocation("2006-01-02", *req.ValidFrom, time.UTC)
        to, err2 := time.ParseInLocation("2006-01-02", *req.ValidTo, time.UTC)
        if err1 != nil || err2 != nil || to.Before(from) {
            return echo.NewHTTPError(http.StatusBadRequest, "invalid validity range")
        }
        plan.ValidFrom, plan.ValidTo = &from, &to
    case model.DiscountKindPackage:
        if req.SessionsRequired < 2 {
            return echo.NewHTTPError(http.StatusBadRequest, "package plans need sessions_required >= 2")
        }
    }

    kind, ownerID, err := h.planOwner(c)
    if err != nil {
        return err
    }
    plan.OwnerKind, plan.OwnerID = kind, ownerID

    if err := h.plans.Create(c.Request().Context(), &plan); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, plan)
}

// List returns the calling owner's plans.
func (h *PricingPlanHandler) List(c echo.Context) error {
    kind, ownerID, err := h.planOwner(c)
    if err != nil {
        return err
    }
    out, err := h.plans.ListByOwner(c.Request().Context(), kind, ownerID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

// Deactivate retires one of the caller's plans.  Historical bookings
// keep referencing it; it just stops applying to new checkouts.
func (h *PricingPlanHandler) Deactivate(c echo.Context) error {
    planID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    kind, ownerID, err := h.planOwner(c)
    if err != nil {
        return err
    }
    if err := h.plans.Deactivate(c.Request().Context(), planID, kind, ownerID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
