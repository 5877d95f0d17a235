package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
    "github.com/novastay/booking-settlement/internal/repository"
)

// AdminCommissionHandler manages commission rules and the booking
// audit trail.  Rule changes never touch amounts already fixed on
// reservations; they only affect quotes computed after the change.
type AdminCommissionHandler struct {
    CommissionRepo *repository.CommissionRuleRepo
    TransitionRepo *repository.TransitionRepo
}

// NewAdminCommissionHandler constructs an AdminCommissionHandler.
func NewAdminCommissionHandler(commissions *repository.CommissionRuleRepo, transitions *repository.TransitionRepo) *AdminCommissionHandler {
    if commissions == nil || transitions == nil {
        panic("nil repository passed to NewAdminCommissionHandler")
    }
    return &AdminCommissionHandler{CommissionRepo: commissions, TransitionRepo: transitions}
}

type commissionRuleReq struct {
    Scope       string `json:"scope" validate:"required"`
    HostRate    string `json:"host_rate" validate:"required"`
    HostFixed   string `json:"host_fixed" validate:"required"`
    ClientRate  string `json:"client_rate" validate:"required"`
    ClientFixed string `json:"client_fixed" validate:"required"`
}

// CreateRule handles POST /v1/admin/commission-rules.  The new rule
// becomes active immediately and, being the most recently activated
// in its scope, wins resolution over older rules with the same
// scope.
func (h *AdminCommissionHandler) CreateRule(c echo.Context) error {
    var req commissionRuleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scope and all four commission parameters are required"})
    }
    parts := map[string]string{
        "host_rate":    req.HostRate,
        "host_fixed":   req.HostFixed,
        "client_rate":  req.ClientRate,
        "client_fixed": req.ClientFixed,
    }
    parsed := map[string]decimal.Decimal{}
    for name, raw := range parts {
        d, err := decimal.NewFromString(strings.TrimSpace(raw))
        if err != nil || d.IsNegative() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": name + " must be a non-negative decimal"})
        }
        parsed[name] = d
    }
    rule := &model.CommissionRule{
        Scope:       strings.ToUpper(strings.TrimSpace(req.Scope)),
        HostRate:    parsed["host_rate"],
        HostFixed:   parsed["host_fixed"],
        ClientRate:  parsed["client_rate"],
        ClientFixed: parsed["client_fixed"],
    }
    if err := h.CommissionRepo.Create(c.Request().Context(), rule); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create rule"})
    }
    return c.JSON(http.StatusCreated, ruleView(*rule))
}

// ListRules handles GET /v1/admin/commission-rules.
func (h *AdminCommissionHandler) ListRules(c echo.Context) error {
    rules, err := h.CommissionRepo.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rules"})
    }
    items := make([]echo.Map, 0, len(rules))
    for _, r := range rules {
        items = append(items, ruleView(r))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeactivateRule handles POST /v1/admin/commission-rules/:id/deactivate.
// A category with no remaining active rule falls back to the global
// rule at resolution time.
func (h *AdminCommissionHandler) DeactivateRule(c echo.Context) error {
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rule id"})
    }
    if err := h.CommissionRepo.Deactivate(c.Request().Context(), id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate rule"})
    }
    return c.NoContent(http.StatusNoContent)
}

// BookingHistory handles GET /v1/admin/bookings/:id/history.  The
// audit trail is append-only; the rows come back in application
// order.
func (h *AdminCommissionHandler) BookingHistory(c echo.Context) error {
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    transitions, err := h.TransitionRepo.ListByReservation(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load history"})
    }
    items := make([]echo.Map, 0, len(transitions))
    for _, t := range transitions {
        items = append(items, echo.Map{
            "prev_status": t.PrevStatus,
            "new_status":  t.NewStatus,
            "actor_id":    t.ActorID,
            "reason":      t.Reason,
            "created_at":  t.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ruleView shapes a commission rule for JSON responses.
func ruleView(r model.CommissionRule) echo.Map {
    return echo.Map{
        "id":           r.ID,
        "scope":        r.Scope,
        "host_rate":    r.HostRate,
        "host_fixed":   r.HostFixed,
        "client_rate":  r.ClientRate,
        "client_fixed": r.ClientFixed,
        "active":       r.Active,
        "activated_at": r.ActivatedAt,
    }
}
