// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the core.  ReservationEventsQueue and
// WithdrawalEventsQueue feed the notification collaborator
// (informed, never consulted); PaymentEventsQueue is the intake
// from the payment collaborator; PaymentCommandsQueue carries
// release-hold commands back to it.
const (
    ReservationEventsQueue = "reservation.events"
    WithdrawalEventsQueue  = "withdrawal.events"
    PaymentEventsQueue     = "payment.events"
    PaymentCommandsQueue   = "payment.commands"
)

// Payment event types emitted by the payment collaborator, keyed by
// reservation id.
const (
    PaymentConfirmedType = "payment.confirmed"
    PaymentFailedType    = "payment.failed"
)

// ReservationEvent is published after every applied booking state
// transition.  It contains enough information for downstream
// consumers to notify, log or trigger analytics without querying
// the primary database.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    ReservationID uint64 `json:"reservation_id"`
    ListingID     uint64 `json:"listing_id"`
    GuestID       uint64 `json:"guest_id"`
    HostID        uint64 `json:"host_id"`
    PrevStatus    string `json:"prev_status"`
    NewStatus     string `json:"new_status"`
    Reason        string `json:"reason,omitempty"`
    OccurredAt    string `json:"occurred_at"`
}

// PaymentEvent is consumed from the payment collaborator.  Type is
// PaymentConfirmedType or PaymentFailedType.
type PaymentEvent struct {
    EventID       string `json:"event_id"`
    Type          string `json:"type"`
    ReservationID uint64 `json:"reservation_id"`
    Reference     string `json:"reference,omitempty"`
    OccurredAt    string `json:"occurred_at"`
}

// ReleaseHoldCommand asks the payment collaborator to release a
// funds hold after a reservation was refused.
type ReleaseHoldCommand struct {
    CommandID     string `json:"command_id"`
    ReservationID uint64 `json:"reservation_id"`
    Reason        string `json:"reason,omitempty"`
    IssuedAt      string `json:"issued_at"`
}

// WithdrawalEvent is published after every withdrawal status change
// for notification purposes.
type WithdrawalEvent struct {
    EventID    string `json:"event_id"`
    Reference  string `json:"reference"`
    HostID     uint64 `json:"host_id"`
    Amount     string `json:"amount"`
    PrevStatus string `json:"prev_status,omitempty"`
    NewStatus  string `json:"new_status"`
    OccurredAt string `json:"occurred_at"`
}
