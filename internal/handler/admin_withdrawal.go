package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/queue"
    "github.com/novastay/booking-settlement/internal/repository"
    queue_publisher "github.com/novastay/booking-settlement/internal/service"
    "github.com/novastay/booking-settlement/internal/settlement"
)

// AdminWithdrawalHandler is the back-office review queue for
// withdrawal requests.  Status moves are validated against the
// withdrawal transition table and applied as CAS updates, so two
// admins acting on the same request cannot double-apply a step.
// COMPLETED requests are immutable.
type AdminWithdrawalHandler struct {
    WithdrawalRepo *repository.WithdrawalRepo
}

// NewAdminWithdrawalHandler constructs an AdminWithdrawalHandler.
func NewAdminWithdrawalHandler(withdrawals *repository.WithdrawalRepo) *AdminWithdrawalHandler {
    if withdrawals == nil {
        panic("nil repository passed to NewAdminWithdrawalHandler")
    }
    return &AdminWithdrawalHandler{WithdrawalRepo: withdrawals}
}

// List handles GET /v1/admin/withdrawals.  The optional ?status=
// filter narrows to one status; results are oldest first so the
// queue is worked in arrival order.
func (h *AdminWithdrawalHandler) List(c echo.Context) error {
    status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
    if status != "" && !settlement.ValidWithdrawalStatus(status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
    }
    withdrawals, err := h.WithdrawalRepo.ListByStatus(c.Request().Context(), status)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load withdrawals"})
    }
    items := make([]echo.Map, 0, len(withdrawals))
    for _, w := range withdrawals {
        items = append(items, withdrawalView(w))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// VerifyAccount handles POST /v1/admin/withdrawals/:id/verify-account
// (ACCOUNT_VALIDATION -> PENDING).
func (h *AdminWithdrawalHandler) VerifyAccount(c echo.Context) error {
    return h.transition(c, settlement.WithdrawalPending)
}

// Approve handles POST /v1/admin/withdrawals/:id/approve
// (PENDING -> PROCESSING).
func (h *AdminWithdrawalHandler) Approve(c echo.Context) error {
    return h.transition(c, settlement.WithdrawalProcessing)
}

// Complete handles POST /v1/admin/withdrawals/:id/complete
// (PROCESSING -> COMPLETED).  After this the request is immutable
// and its amount stays held against the host balance for good.
func (h *AdminWithdrawalHandler) Complete(c echo.Context) error {
    return h.transition(c, settlement.WithdrawalCompleted)
}

// Reject handles POST /v1/admin/withdrawals/:id/reject.  Allowed
// from any status before COMPLETED; rejection releases the held
// funds back to the host balance.
func (h *AdminWithdrawalHandler) Reject(c echo.Context) error {
    return h.transition(c, settlement.WithdrawalRejected)
}

// transition applies one CAS status move to a withdrawal request.
func (h *AdminWithdrawalHandler) transition(c echo.Context, to string) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid withdrawal id"})
    }
    ctx := c.Request().Context()
    tx, err := h.WithdrawalRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    w, err := h.WithdrawalRepo.GetByIDTx(ctx, tx, id)
    if err != nil {
        if errors.Is(err, repository.ErrWithdrawalNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "withdrawal not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := settlement.TransitionWithdrawal(w.Status, to); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "illegal withdrawal transition"})
    }
    if err := h.WithdrawalRepo.UpdateStatusTx(ctx, tx, w.ID, w.Status, to); err != nil {
        if errors.Is(err, repository.ErrStale) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "withdrawal changed concurrently"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update withdrawal"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    _ = queue_publisher.PublishWithdrawalEvent(ctx, queue.WithdrawalEvent{
        EventID:    uuid.NewString(),
        Reference:  w.Reference,
        HostID:     w.HostID,
        Amount:     w.Amount.String(),
        PrevStatus: w.Status,
        NewStatus:  to,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
    w.Status = to
    return c.JSON(http.StatusOK, withdrawalView(w))
}
