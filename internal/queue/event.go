// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into rendered
// notification lines.
package queue

// NotifyQueueName is the durable queue all notification requests go
// through.
const NotifyQueueName = "schulungen.notify"

// NotificationEvent is published for every booking transition.  It
// carries enough information for the notification worker to render a
// message without querying the primary database.  TemplateKey selects
// the message template (booking-confirmed, booking-waitlisted,
// booking-cancelled, booking-promoted).
type NotificationEvent struct {
	TemplateKey string `json:"template_key"`
	BookingID   uint64 `json:"booking_id"`
	CustomerID  uint64 `json:"customer_id"`
	ExecutionID uint64 `json:"execution_id"`
	Status      string `json:"status"`
	PriceCents  uint32 `json:"price_cents"`
	RequestedAt string `json:"requested_at"`
}
