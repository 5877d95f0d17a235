package settlement

import "testing"

func TestWithdrawalTransitionTable(t *testing.T) {
    all := []string{
        WithdrawalAccountValidation,
        WithdrawalPending,
        WithdrawalProcessing,
        WithdrawalCompleted,
        WithdrawalRejected,
    }
    legal := map[[2]string]bool{
        {WithdrawalAccountValidation, WithdrawalPending}:  true,
        {WithdrawalAccountValidation, WithdrawalRejected}: true,
        {WithdrawalPending, WithdrawalProcessing}:         true,
        {WithdrawalPending, WithdrawalRejected}:           true,
        {WithdrawalProcessing, WithdrawalCompleted}:       true,
        {WithdrawalProcessing, WithdrawalRejected}:        true,
    }
    for _, from := range all {
        for _, to := range all {
            err := TransitionWithdrawal(from, to)
            if legal[[2]string{from, to}] {
                if err != nil {
                    t.Errorf("TransitionWithdrawal(%s, %s) = %v, want nil", from, to, err)
                }
            } else if err != ErrIllegalWithdrawalTransition {
                t.Errorf("TransitionWithdrawal(%s, %s) = %v, want ErrIllegalWithdrawalTransition", from, to, err)
            }
        }
    }
}

func TestInitialStatus(t *testing.T) {
    if got := InitialStatus(true); got != WithdrawalPending {
        t.Errorf("verified method: got %s, want PENDING", got)
    }
    if got := InitialStatus(false); got != WithdrawalAccountValidation {
        t.Errorf("unverified method: got %s, want ACCOUNT_VALIDATION", got)
    }
}

func TestHoldsFunds(t *testing.T) {
    holding := []string{WithdrawalPending, WithdrawalAccountValidation, WithdrawalProcessing, WithdrawalCompleted}
    for _, s := range holding {
        if !HoldsFunds(s) {
            t.Errorf("%s should hold funds", s)
        }
    }
    if HoldsFunds(WithdrawalRejected) {
        t.Error("REJECTED must release funds")
    }
    if HoldsFunds("BOGUS") {
        t.Error("unknown status must not hold funds")
    }
}

func TestWithdrawalTerminal(t *testing.T) {
    if !WithdrawalTerminal(WithdrawalCompleted) || !WithdrawalTerminal(WithdrawalRejected) {
        t.Error("COMPLETED and REJECTED must be terminal")
    }
    for _, s := range []string{WithdrawalPending, WithdrawalAccountValidation, WithdrawalProcessing} {
        if WithdrawalTerminal(s) {
            t.Errorf("%s must not be terminal", s)
        }
    }
}
