package dispatcher

import (
	"snct-watcher/internal/model"
)

// Subscriber receives matched appointment batches. Deliver must not block:
// a slow consumer drops the batch on its own side rather than stalling the
// dispatcher.
type Subscriber interface {
	Deliver(added, removed []model.Appointment)
}

// SubscriberFunc is a function adapter for Subscriber.
type SubscriberFunc func(added, removed []model.Appointment)

func (f SubscriberFunc) Deliver(added, removed []model.Appointment) { f(added, removed) }

// Delivery is the wire form of one push on the subscribe stream.
type Delivery struct {
	Status  int                 `json:"status"`
	Added   []model.Appointment `json:"added"`
	Removed []model.Appointment `json:"removed"`
}

// CriterionSpec is the wire form of one criterion as sent by a subscriber
// or parsed from REST path parameters. All fields are validated against
// the enumerations known at registration time.
type CriterionSpec struct {
	UserType    string `json:"user_type"`
	ControlType string `json:"control_type"`
	VehicleType string `json:"vehicle_type"`
	Organism    string `json:"organism"`
	Site        string `json:"site"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// subscription is one registered subscriber with its current criteria.
// A new criteria message replaces the list wholesale.
type subscription struct {
	criteria []model.Criterion
	sub      Subscriber
}
