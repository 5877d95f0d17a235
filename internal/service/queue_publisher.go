// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow: the notification collaborator is
// informed, never consulted.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/novastay/booking-settlement/internal/queue"
)

// publish marshals the payload and delivers it to the named queue.
// The queue is declared durable and messages are marked persistent
// so they survive broker restarts. The function never panics; any
// error is logged and returned so the caller can choose to ignore
// it.
func publish(ctx context.Context, queueName string, payload any) error {
    conn, err := amqp.Dial(q.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(payload)
    if err != nil {
        log.Printf("rabbitmq: marshal failed: %v", err)
        return err
    }

    pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := ch.PublishWithContext(pctx, "", queueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Body:         body,
    }); err != nil {
        log.Printf("rabbitmq: publish to %s failed: %v", queueName, err)
        return err
    }
    return nil
}

// PublishReservationEvent publishes a booking state transition to
// the reservation.events queue.
func PublishReservationEvent(ctx context.Context, event q.ReservationEvent) error {
    return publish(ctx, q.ReservationEventsQueue, event)
}

// PublishWithdrawalEvent publishes a withdrawal status change to
// the withdrawal.events queue.
func PublishWithdrawalEvent(ctx context.Context, event q.WithdrawalEvent) error {
    return publish(ctx, q.WithdrawalEventsQueue, event)
}

// PublishReleaseHold sends a release-hold command to the payment
// collaborator after a reservation was refused.
func PublishReleaseHold(ctx context.Context, cmd q.ReleaseHoldCommand) error {
    return publish(ctx, q.PaymentCommandsQueue, cmd)
}
