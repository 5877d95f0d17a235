package settlement

import (
    "testing"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
    t.Helper()
    d, err := decimal.NewFromString(s)
    if err != nil {
        t.Fatalf("bad decimal %q: %v", s, err)
    }
    return d
}

func res(t *testing.T, status booking.Status, receivable string) model.Reservation {
    t.Helper()
    return model.Reservation{Status: string(status), HostReceivable: dec(t, receivable)}
}

func wdr(t *testing.T, status, amount string) model.WithdrawalRequest {
    t.Helper()
    return model.WithdrawalRequest{Status: status, Amount: dec(t, amount)}
}

func TestComputeTiers(t *testing.T) {
    reservations := []model.Reservation{
        res(t, booking.StatusWaiting, "100"),  // not committed, ignored
        res(t, booking.StatusRefused, "40"),   // terminal failure, ignored
        res(t, booking.StatusReserved, "80"),  // committed
        res(t, booking.StatusCheckin, "60"),   // committed
        res(t, booking.StatusCheckout, "90"),  // committed and delivered
    }
    b := Compute(reservations, nil)
    if !b.TotalReceivable.Equal(dec(t, "230")) {
        t.Errorf("TotalReceivable = %s, want 230", b.TotalReceivable)
    }
    if !b.DeliveredReceivable.Equal(dec(t, "90")) {
        t.Errorf("DeliveredReceivable = %s, want 90", b.DeliveredReceivable)
    }
    if !b.Available50.Equal(dec(t, "115")) {
        t.Errorf("Available50 = %s, want 115", b.Available50)
    }
    if !b.Available100.Equal(dec(t, "90")) {
        t.Errorf("Available100 = %s, want 90", b.Available100)
    }
}

// One CHECKOUT stay of 90 yields available100 = 90;
// after a COMPLETED withdrawal of 40 a fresh computation yields 50.
func TestComputeAfterCompletedWithdrawal(t *testing.T) {
    reservations := []model.Reservation{res(t, booking.StatusCheckout, "90")}

    before := Compute(reservations, nil)
    if !before.Available100.Equal(dec(t, "90")) {
        t.Fatalf("Available100 = %s, want 90", before.Available100)
    }

    after := Compute(reservations, []model.WithdrawalRequest{wdr(t, WithdrawalCompleted, "40")})
    if !after.Available100.Equal(dec(t, "50")) {
        t.Fatalf("Available100 after completed withdrawal = %s, want 50", after.Available100)
    }
}

func TestComputeHeldStatuses(t *testing.T) {
    reservations := []model.Reservation{res(t, booking.StatusCheckout, "200")}
    withdrawals := []model.WithdrawalRequest{
        wdr(t, WithdrawalPending, "10"),
        wdr(t, WithdrawalAccountValidation, "20"),
        wdr(t, WithdrawalProcessing, "30"),
        wdr(t, WithdrawalCompleted, "40"),
        wdr(t, WithdrawalRejected, "500"), // released, must not count
    }
    b := Compute(reservations, withdrawals)
    if !b.WithdrawalsHeld.Equal(dec(t, "100")) {
        t.Errorf("WithdrawalsHeld = %s, want 100", b.WithdrawalsHeld)
    }
    if !b.Available100.Equal(dec(t, "100")) {
        t.Errorf("Available100 = %s, want 100", b.Available100)
    }
    // 200*0.5 - 100 = 0
    if !b.Available50.Equal(decimal.Zero) {
        t.Errorf("Available50 = %s, want 0", b.Available50)
    }
}

func TestComputeFloorsAtZero(t *testing.T) {
    reservations := []model.Reservation{res(t, booking.StatusReserved, "50")}
    withdrawals := []model.WithdrawalRequest{wdr(t, WithdrawalCompleted, "40")}
    b := Compute(reservations, withdrawals)
    if b.Available50.IsNegative() || b.Available100.IsNegative() {
        t.Fatalf("available balances must never be negative: %+v", b)
    }
}

func TestValidate(t *testing.T) {
    b := Compute(
        []model.Reservation{res(t, booking.StatusCheckout, "90")},
        nil,
    )
    if err := Validate(dec(t, "90"), TierFull100, b); err != nil {
        t.Errorf("exact maximum rejected: %v", err)
    }
    if err := Validate(dec(t, "90.01"), TierFull100, b); err != ErrInsufficientBalance {
        t.Errorf("over maximum: got %v, want ErrInsufficientBalance", err)
    }
    if err := Validate(dec(t, "45"), TierPartial50, b); err != nil {
        t.Errorf("50%% tier at maximum rejected: %v", err)
    }
    if err := Validate(dec(t, "46"), TierPartial50, b); err != ErrInsufficientBalance {
        t.Errorf("50%% tier over maximum: got %v, want ErrInsufficientBalance", err)
    }
    if err := Validate(dec(t, "0"), TierFull100, b); err != ErrNonPositiveAmount {
        t.Errorf("zero amount: got %v, want ErrNonPositiveAmount", err)
    }
    if err := Validate(dec(t, "10"), "HALFSIES", b); err != ErrUnknownTier {
        t.Errorf("bad tier: got %v, want ErrUnknownTier", err)
    }
}

// Two sequential requests against one gross balance: once the first
// request's amount is held, the second validation must fail.  This
// is the property the per-host serialized unit preserves under
// concurrency.
func TestSequentialRequestsCannotBothDrain(t *testing.T) {
    reservations := []model.Reservation{res(t, booking.StatusCheckout, "100")}

    first := Compute(reservations, nil)
    if err := Validate(dec(t, "100"), TierFull100, first); err != nil {
        t.Fatalf("first request should pass: %v", err)
    }

    // First request inserted and holding funds; recompute.
    second := Compute(reservations, []model.WithdrawalRequest{wdr(t, WithdrawalPending, "100")})
    if err := Validate(dec(t, "100"), TierFull100, second); err != ErrInsufficientBalance {
        t.Fatalf("second request must fail with ErrInsufficientBalance, got %v", err)
    }
}
