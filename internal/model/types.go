package model

import "time"

// User types accepted by the booking service.
const (
	UserPrivate      = "PRIVATE"
	UserProfessional = "PROFESSIONAL"
)

// Control types accepted by the booking service.
const (
	ControlRegular  = "REGULAR"
	ControlRejected = "REJECTED"
)

// UserTypes lists the valid user_type values.
var UserTypes = []string{UserPrivate, UserProfessional}

// ControlTypes lists the valid control_type values.
var ControlTypes = []string{ControlRegular, ControlRejected}

// Organisms lists the inspection organisms the watcher knows how to scrape.
// Currently a singleton; normalized vehicle type names are chosen so a second
// organism can share the same enumeration later.
var Organisms = []string{"snct"}

// Key identifies one appointment category. The full key space is the
// cartesian product of user types, control types, and the vehicle-type and
// site enumerations discovered at startup. Keys are plain value tuples:
// two keys are equal iff all five fields are equal, and a Key is usable as
// a map key.
type Key struct {
	UserType    string
	ControlType string
	VehicleType string
	Organism    string
	Site        string
}

// EventKind distinguishes appearing from disappearing slots.
type EventKind int

const (
	// Added means the timestamp is present in the new snapshot but not the old.
	Added EventKind = iota
	// Removed means the timestamp was present in the old snapshot but not the new.
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// AppointmentEvent is one slot appearing or disappearing for one key,
// produced by comparing two successful refreshes of that key.
type AppointmentEvent struct {
	Key       Key
	Timestamp time.Time
	Kind      EventKind
}

// Appointment is the wire form of a single slot, as served on the REST and
// WebSocket APIs.
type Appointment struct {
	UserType    string    `json:"user_type"`
	ControlType string    `json:"control_type"`
	VehicleType string    `json:"vehicle_type"`
	Organism    string    `json:"organism"`
	Site        string    `json:"site"`
	Timestamp   time.Time `json:"timestamp"`
}

// AppointmentFromEvent flattens an event into its wire form.
func AppointmentFromEvent(ev AppointmentEvent) Appointment {
	return Appointment{
		UserType:    ev.Key.UserType,
		ControlType: ev.Key.ControlType,
		VehicleType: ev.Key.VehicleType,
		Organism:    ev.Key.Organism,
		Site:        ev.Key.Site,
		Timestamp:   ev.Timestamp,
	}
}

// Criterion is one subscriber-specified filter: exact key fields plus an
// inclusive time window. Start must not be after End.
type Criterion struct {
	Key   Key
	Start time.Time
	End   time.Time
}

// Matches reports whether the event key equals the criterion key and the
// timestamp lies within [Start, End].
func (c Criterion) Matches(k Key, ts time.Time) bool {
	if k != c.Key {
		return false
	}
	return !ts.Before(c.Start) && !ts.After(c.End)
}
