package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPlaced  = "order.placed"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// OrderEvent is the payload published for every order lifecycle change.
type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        uint            `json:"order_id"`
	UserID         uint            `json:"user_id"`
	DeliveryCrewID *uint           `json:"delivery_crew_id,omitempty"`
	Status         int             `json:"status"`
	Total          decimal.Decimal `json:"total"`
	Items          int             `json:"items"`
	ActorID        uint            `json:"actor_id"`
	At             time.Time       `json:"at"`
}

type Publisher interface {
	PublishOrder(ctx context.Context, ev OrderEvent) error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrder(context.Context, OrderEvent) error { return nil }

// Recorder keeps events in memory; handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (r *Recorder) PublishOrder(_ context.Context, ev OrderEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}
