package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
    "github.com/novastay/booking-settlement/internal/queue"
    "github.com/novastay/booking-settlement/internal/repository"
    queue_publisher "github.com/novastay/booking-settlement/internal/service"
    "github.com/novastay/booking-settlement/internal/settlement"
)

// HostWithdrawalHandler serves the host-facing settlement surface:
// the balance view and withdrawal requests.  Request creation locks
// the host's user row and recomputes the balance inside that
// transaction, so two concurrent requests cannot both draw against
// the same funds.
type HostWithdrawalHandler struct {
    UserRepo        *repository.UserRepo
    ReservationRepo *repository.ReservationRepo
    WithdrawalRepo  *repository.WithdrawalRepo
    LedgerRepo      *repository.LedgerRepo
}

// NewHostWithdrawalHandler constructs a HostWithdrawalHandler.  All dependencies must be non-nil.
func NewHostWithdrawalHandler(users *repository.UserRepo, reservations *repository.ReservationRepo, withdrawals *repository.WithdrawalRepo, ledger *repository.LedgerRepo) *HostWithdrawalHandler {
    if users == nil || reservations == nil || withdrawals == nil || ledger == nil {
        panic("nil repository passed to NewHostWithdrawalHandler")
    }
    return &HostWithdrawalHandler{UserRepo: users, ReservationRepo: reservations, WithdrawalRepo: withdrawals, LedgerRepo: ledger}
}

// GetBalance handles GET /v1/host/balance.  The figures are
// computed from current reservations and withdrawal requests; they
// are advisory for display, request validation always recomputes
// under the host lock.
func (h *HostWithdrawalHandler) GetBalance(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    reservations, err := h.ReservationRepo.ListByHostForSettlementTx(ctx, tx, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    withdrawals, err := h.WithdrawalRepo.ListByHostTx(ctx, tx, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load withdrawals"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.JSON(http.StatusOK, settlement.Compute(reservations, withdrawals))
}

type withdrawalReq struct {
    Amount        string `json:"amount" validate:"required"`
    Tier          string `json:"tier" validate:"required,oneof=PARTIAL_50 FULL_100"`
    PaymentMethod string `json:"payment_method" validate:"required"`
}

// RequestWithdrawal handles POST /v1/host/withdrawals.  The host
// row is locked FOR UPDATE for the duration of the validation so
// concurrent requests from the same host serialize; the balance is
// always recomputed fresh inside that transaction.  Requests on a
// payout method without a prior completed payout start in
// ACCOUNT_VALIDATION instead of PENDING.
func (h *HostWithdrawalHandler) RequestWithdrawal(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req withdrawalReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount, tier (PARTIAL_50|FULL_100) and payment_method are required"})
    }
    amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a decimal"})
    }
    method := strings.TrimSpace(req.PaymentMethod)

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
    // Per-host serialization token: every withdrawal creation locks
    // the host's user row first.
    if err := h.UserRepo.LockTx(ctx, tx, hostID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock host"})
    }
    reservations, err := h.ReservationRepo.ListByHostForSettlementTx(ctx, tx, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    withdrawals, err := h.WithdrawalRepo.ListByHostTx(ctx, tx, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load withdrawals"})
    }
    balance := settlement.Compute(reservations, withdrawals)
    if err := settlement.Validate(amount, req.Tier, balance); err != nil {
        switch {
        case errors.Is(err, settlement.ErrInsufficientBalance):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "insufficient balance"})
        case errors.Is(err, settlement.ErrNonPositiveAmount):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "amount must be positive"})
        case errors.Is(err, settlement.ErrUnknownTier):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown tier"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
    }
    verified, err := h.WithdrawalRepo.HasVerifiedMethodTx(ctx, tx, hostID, method)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    snapshot, _ := balance.Available(req.Tier)
    w := &model.WithdrawalRequest{
        Reference:       uuid.NewString(),
        HostID:          hostID,
        Amount:          amount,
        Tier:            req.Tier,
        BalanceSnapshot: snapshot,
        Status:          settlement.InitialStatus(verified),
        PaymentMethod:   method,
        MethodVerified:  verified,
    }
    if err := h.WithdrawalRepo.CreateTx(ctx, tx, w); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create withdrawal"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    _ = queue_publisher.PublishWithdrawalEvent(ctx, queue.WithdrawalEvent{
        EventID:    uuid.NewString(),
        Reference:  w.Reference,
        HostID:     hostID,
        Amount:     amount.String(),
        NewStatus:  w.Status,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
    return c.JSON(http.StatusCreated, withdrawalView(*w))
}

// ListWithdrawals handles GET /v1/host/withdrawals.
func (h *HostWithdrawalHandler) ListWithdrawals(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    withdrawals, err := h.WithdrawalRepo.ListByHost(c.Request().Context(), hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load withdrawals"})
    }
    items := make([]echo.Map, 0, len(withdrawals))
    for _, w := range withdrawals {
        items = append(items, withdrawalView(w))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListLedger handles GET /v1/host/ledger.  Each entry is one
// checked-out stay's receivable credit, newest first.
func (h *HostWithdrawalHandler) ListLedger(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    entries, err := h.LedgerRepo.ListByHost(c.Request().Context(), hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ledger"})
    }
    items := make([]echo.Map, 0, len(entries))
    for _, e := range entries {
        items = append(items, echo.Map{
            "id":             e.ID,
            "reservation_id": e.ReservationID,
            "amount":         e.Amount,
            "created_at":     e.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// withdrawalView shapes a withdrawal request for JSON responses.
func withdrawalView(w model.WithdrawalRequest) echo.Map {
    return echo.Map{
        "id":               w.ID,
        "reference":        w.Reference,
        "amount":           w.Amount,
        "tier":             w.Tier,
        "balance_snapshot": w.BalanceSnapshot,
        "status":           w.Status,
        "payment_method":   w.PaymentMethod,
        "method_verified":  w.MethodVerified,
        "created_at":       w.CreatedAt,
    }
}
