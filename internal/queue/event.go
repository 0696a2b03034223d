// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// QueueName is the durable queue carrying roster events.
const QueueName = "traveller.events"

// Event types.
const (
	TravellerBooked  = "traveller.booked"
	TravellerRemoved = "traveller.removed"
)

// TravellerEvent is published after a roster mutation has been persisted.
// It carries enough for downstream consumers to log or notify without
// reading the roster store.
type TravellerEvent struct {
	Type        string `json:"type"`
	TravellerID string `json:"traveller_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	BookingTime string `json:"booking_time"`
	FreeSeats   int    `json:"free_seats"`
	OccurredAt  string `json:"occurred_at"`
}
