// Package event carries notifications from the production core to whatever
// presents them (UI, logs, analytics). Events are plain data.
package event

import "time"

// Type identifies the kind of notification.
type Type string

const (
	ProductionUpdated Type = "production_updated"
	CapacityUpgraded  Type = "capacity_upgraded"
	RateUpgraded      Type = "rate_upgraded"
	Collected         Type = "collected"
	SaveFailed        Type = "save_failed"
)

// Event is a single notification record.
// Only the fields relevant to Type are set.
type Event struct {
	Type        Type      `json:"type"`
	At          time.Time `json:"at"`
	Current     float64   `json:"current,omitempty"`      // ProductionUpdated
	Capacity    int       `json:"capacity,omitempty"`     // ProductionUpdated
	NewCapacity int       `json:"new_capacity,omitempty"` // CapacityUpgraded
	NewRate     float64   `json:"new_rate,omitempty"`     // RateUpgraded
	Amount      float64   `json:"amount,omitempty"`       // Collected
	Err         string    `json:"error,omitempty"`        // SaveFailed
}

// Notifier receives events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(Event) {}

func NewProductionUpdated(current float64, capacity int) Event {
	return Event{Type: ProductionUpdated, At: time.Now(), Current: current, Capacity: capacity}
}

func NewCapacityUpgraded(capacity int) Event {
	return Event{Type: CapacityUpgraded, At: time.Now(), NewCapacity: capacity}
}

func NewRateUpgraded(rate float64) Event {
	return Event{Type: RateUpgraded, At: time.Now(), NewRate: rate}
}

func NewCollected(amount float64) Event {
	return Event{Type: Collected, At: time.Now(), Amount: amount}
}

func NewSaveFailed(err error) Event {
	return Event{Type: SaveFailed, At: time.Now(), Err: err.Error()}
}
