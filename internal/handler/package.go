package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
    "github.com/iliyamo/coach-court-booking/internal/service"
)

// PackageHandler serves package purchase, approval and listing.
type PackageHandler struct {
    packages *repository.PackageRepo
    plans    *repository.PricingPlanRepo
    coaches  *repository.CoachRepo
}

// NewPackageHandler returns a handler bound to the given repositories.
func NewPackageHandler(packages *repository.PackageRepo, plans *repository.PricingPlanRepo,
    coaches *repository.CoachRepo) *PackageHandler {
    return &PackageHandler{packages: packages, plans: plans, coaches: coaches}
}

type purchaseRequest struct {
    PlanID   uint64 `json:"plan_id" validate:"required"`
    Sessions uint32 `json:"sessions"`
    // Reference coach whose hourly rate prices the bundle.  Required for
    // academy-owned plans; ignored for coach-owned plans, where the
    // owner coach is the reference.
    CoachID   uint64 `json:"coach_id"`
    ValidDays uint32 `json:"valid_days"`
}

// Purchase creates a PENDING package from a PACKAGE-kind pricing plan.
// The package becomes usable once the coach or academy approves it.
func (h *PackageHandler) Purchase(c echo.Context) error {
    var req purchaseRequest
    if err := bindAndValidate(c, &req); err != nil {
        return err
    }
    ctx := c.Request().Context()

    plan, err := h.plans.GetByID(ctx, req.PlanID)
    if err != nil {
        return domainError(c, err)
    }
    if plan.Kind != model.DiscountKindPackage || !plan.Active {
        return domainError(c, repository.ErrPlanNotApplicable)
    }
    sessions := req.Sessions
    if sessions == 0 {
        sessions = plan.SessionsRequired
    }
    if sessions < plan.SessionsRequired {
        return echo.NewHTTPError(http.StatusBadRequest, "sessions below the plan minimum")
    }

    pkg := model.BookingPackage{
        StudentID:     currentUserID(c),
        PlanID:        plan.ID,
        TotalSessions: sessions,
        Status:        model.PackageStatusPending,
    }
    var rateCoachID uint64
    switch plan.OwnerKind {
    case model.PlanOwnerCoach:
        pkg.Kind = model.PackageKindCoach
        pkg.CoachID = plan.OwnerID
        rateCoachID = plan.OwnerID
    case model.PlanOwnerAcademy:
        if req.CoachID == 0 {
            return echo.NewHTTPError(http.StatusBadRequest, "coach_id required for academy plans")
        }
        member, err := h.coaches.IsActiveAcademyMember(ctx, req.CoachID, plan.OwnerID)
        if err != nil {
            return domainError(c, err)
        }
        if !member {
            return domainError(c, repository.ErrPackageNotEligible)
        }
        pkg.Kind = model.PackageKindAcademy
        pkg.AcademyID = plan.OwnerID
        rateCoachID = req.CoachID
    default:
        return domainError(c, repository.ErrPlanNotApplicable)
    }

    coach, err := h.coaches.GetByID(ctx, rateCoachID)
    if err != nil {
        return domainError(c, err)
    }
    pkg.OriginalCents, pkg.DiscountCents, pkg.FinalCents =
        service.PackagePurchasePrice(coach.HourlyRateCents, sessions, plan)
    if req.ValidDays > 0 {
        expires := time.Now().UTC().AddDate(0, 0, int(req.ValidDays))
        pkg.ExpiresAt = &expires
    }

    if err := h.packages.Create(ctx, &pkg); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusCreated, pkg)
}

// Approve activates a pending package.  Only the coach or academy the
// package is tied to may approve it.
func (h *PackageHandler) Approve(c echo.Context) error {
    return h.setStatus(c, model.PackageStatusActive)
}

// Reject declines a pending package.
func (h *PackageHandler) Reject(c echo.Context) error {
    return h.setStatus(c, model.PackageStatusRejected)
}

func (h *PackageHandler) setStatus(c echo.Context, status string) error {
    pkgID, err := pathID(c, "id")
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    pkg, err := h.packages.GetByID(ctx, pkgID)
    if err != nil {
        return domainError(c, err)
    }
    if err := h.authorizeOwner(c, pkg); err != nil {
        return err
    }
    if err := h.packages.SetStatus(ctx, pkgID, status); err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": pkgID, "status": status})
}

// authorizeOwner checks the caller against the party the package is tied
// to: the coach (via their profile) or the academy (whose JWT subject is
// the academy id).
func (h *PackageHandler) authorizeOwner(c echo.Context, pkg *model.BookingPackage) error {
    role, _ := c.Get("role").(string)
    switch {
    case pkg.Kind == model.PackageKindCoach && role == "COACH":
        coach, err := h.coaches.GetByUserID(c.Request().Context(), currentUserID(c))
        if err == nil && coach.ID == pkg.CoachID {
            return nil
        }
    case pkg.Kind == model.PackageKindAcademy && role == "ACADEMY":
        if currentUserID(c) == pkg.AcademyID {
            return nil
        }
    }
    return domainError(c, repository.ErrForbidden)
}

// ListMine returns the authenticated student's packages.
func (h *PackageHandler) ListMine(c echo.Context) error {
    out, err := h.packages.ListByStudent(c.Request().Context(), currentUserID(c))
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"packages": out})
}
