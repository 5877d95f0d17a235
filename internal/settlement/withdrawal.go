package settlement

import "errors"

// Withdrawal request statuses.  A request starts in PENDING, or in
// ACCOUNT_VALIDATION when its payout method is new or unverified.
// Admin review moves it forward; COMPLETED and REJECTED are
// terminal and a COMPLETED request is immutable.
const (
    WithdrawalPending           = "PENDING"
    WithdrawalAccountValidation = "ACCOUNT_VALIDATION"
    WithdrawalProcessing        = "PROCESSING"
    WithdrawalCompleted         = "COMPLETED"
    WithdrawalRejected          = "REJECTED"
)

// ErrIllegalWithdrawalTransition is returned when an admin action
// requests a status change outside the transition table.
var ErrIllegalWithdrawalTransition = errors.New("illegal withdrawal transition")

// withdrawalTransitions is the exhaustive edge set for withdrawal
// requests.  Any pre-COMPLETED state may be rejected, which
// releases the funds back into the host's balance.
var withdrawalTransitions = map[string][]string{
    WithdrawalAccountValidation: {WithdrawalPending, WithdrawalRejected},
    WithdrawalPending:           {WithdrawalProcessing, WithdrawalRejected},
    WithdrawalProcessing:        {WithdrawalCompleted, WithdrawalRejected},
    WithdrawalCompleted:         {},
    WithdrawalRejected:          {},
}

// InitialStatus returns the status a new withdrawal request enters:
// PENDING when the payout method is already verified,
// ACCOUNT_VALIDATION otherwise.
func InitialStatus(methodVerified bool) string {
    if methodVerified {
        return WithdrawalPending
    }
    return WithdrawalAccountValidation
}

// ValidWithdrawalStatus reports whether s is a known status.
func ValidWithdrawalStatus(s string) bool {
    _, ok := withdrawalTransitions[s]
    return ok
}

// WithdrawalTerminal reports whether s admits no further change.
func WithdrawalTerminal(s string) bool {
    return ValidWithdrawalStatus(s) && len(withdrawalTransitions[s]) == 0
}

// HoldsFunds reports whether a request in this status keeps its
// amount out of the host's available balance.  Everything except
// REJECTED does: in-flight requests reserve the money and COMPLETED
// ones have already been paid out.
func HoldsFunds(s string) bool {
    return ValidWithdrawalStatus(s) && s != WithdrawalRejected
}

// TransitionWithdrawal validates a requested edge.
func TransitionWithdrawal(from, to string) error {
    for _, next := range withdrawalTransitions[from] {
        if next == to {
            return nil
        }
    }
    return ErrIllegalWithdrawalTransition
}
