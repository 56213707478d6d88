package dispatcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"snct-watcher/internal/catalog"
	"snct-watcher/internal/fetcher"
	"snct-watcher/internal/model"
)

// Dispatcher owns the only two pieces of shared mutable state in the
// process: the current per-key slot sets and the subscription registry.
// Every mutation runs under one mutex, so snapshot updates, registrations,
// and fan-outs never interleave.
type Dispatcher struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
	loc     *time.Location

	mu      sync.Mutex
	current map[model.Key][]time.Time
	subs    map[uuid.UUID]*subscription
}

// New creates a Dispatcher with an empty snapshot.
func New(cat *catalog.Catalog, loc *time.Location, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{
		catalog: cat,
		logger:  logger,
		loc:     loc,
		current: make(map[model.Key][]time.Time),
		subs:    make(map[uuid.UUID]*subscription),
	}
}

// HandleSnapshot implements fetcher.SnapshotHandler.
func (d *Dispatcher) HandleSnapshot(snap fetcher.Snapshot) {
	d.Update(snap)
}

// Update ingests one refresh cycle's snapshot.
//
// Per key: a first observation is stored without events; a failure marker
// retains the previously stored slots; otherwise the new value replaces the
// old wholesale and the set differences become events. All diffs are
// computed before any delivery, so subscribers see one consistent batch
// per cycle.
func (d *Dispatcher) Update(snap fetcher.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []model.AppointmentEvent
	var failed int

	for key, res := range snap {
		if res.Failed() {
			d.logger.Warn("keeping previous slots for failed key",
				"site", key.Site,
				"vehicle_type", key.VehicleType,
				"err", res.Err,
			)
			failed++
			continue
		}

		old, seen := d.current[key]
		if !seen {
			d.current[key] = res.Slots
			continue
		}

		added := model.DiffSlots(res.Slots, old)
		removed := model.DiffSlots(old, res.Slots)
		d.current[key] = res.Slots

		for _, ts := range added {
			events = append(events, model.AppointmentEvent{Key: key, Timestamp: ts, Kind: model.Added})
		}
		for _, ts := range removed {
			events = append(events, model.AppointmentEvent{Key: key, Timestamp: ts, Kind: model.Removed})
		}
	}

	if len(events) > 0 {
		d.fanOut(events)
	}

	d.logger.Info("snapshot updated",
		"keys", len(snap),
		"failed", failed,
		"events", len(events),
		"subscribers", len(d.subs),
	)
}

// fanOut delivers the cycle's events to every subscription whose criteria
// match. Matches are merged across a subscription's criteria so each
// subscriber is delivered to at most once per cycle. Caller holds d.mu.
func (d *Dispatcher) fanOut(events []model.AppointmentEvent) {
	for _, sub := range d.subs {
		matched := make(map[model.AppointmentEvent]struct{})
		for _, crit := range sub.criteria {
			for _, ev := range events {
				if crit.Matches(ev.Key, ev.Timestamp) {
					matched[ev] = struct{}{}
				}
			}
		}
		if len(matched) == 0 {
			continue
		}

		var added, removed []model.Appointment
		for ev := range matched {
			switch ev.Kind {
			case model.Added:
				added = append(added, model.AppointmentFromEvent(ev))
			case model.Removed:
				removed = append(removed, model.AppointmentFromEvent(ev))
			}
		}
		sortAppointments(added)
		sortAppointments(removed)

		sub.sub.Deliver(added, removed)
	}
}

// Register validates the criteria and installs them for id, replacing any
// previous criteria for that id. On success an initial push is delivered
// immediately: every currently stored timestamp matching the new criteria,
// reported as added. On the first invalid field registration fails without
// touching the registry.
func (d *Dispatcher) Register(id uuid.UUID, specs []CriterionSpec, sub Subscriber) error {
	criteria, err := d.parseCriteria(specs)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs[id] = &subscription{criteria: criteria, sub: sub}
	d.logger.Info("subscription registered", "id", id, "criteria", len(criteria))

	// Initial push: a full snapshot view, not a diff. Delivered even when
	// empty so the client learns the subscription took effect.
	added := d.matchCurrentLocked(criteria)
	sub.Deliver(added, nil)
	return nil
}

// matchCurrentLocked collects stored slots matching the criteria, merged
// and deduplicated across criteria. Caller holds d.mu.
func (d *Dispatcher) matchCurrentLocked(criteria []model.Criterion) []model.Appointment {
	matched := make(map[model.AppointmentEvent]struct{})
	for _, crit := range criteria {
		slots, ok := d.current[crit.Key]
		if !ok {
			continue
		}
		for _, ts := range slots {
			if crit.Matches(crit.Key, ts) {
				matched[model.AppointmentEvent{Key: crit.Key, Timestamp: ts, Kind: model.Added}] = struct{}{}
			}
		}
	}

	out := make([]model.Appointment, 0, len(matched))
	for ev := range matched {
		out = append(out, model.AppointmentFromEvent(ev))
	}
	sortAppointments(out)
	return out
}

// Unregister removes the subscription if present. Idempotent.
func (d *Dispatcher) Unregister(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.subs[id]; !ok {
		return
	}
	delete(d.subs, id)
	d.logger.Info("subscription unregistered", "id", id)
}

// Slots returns a copy of the currently stored timestamps for one key.
func (d *Dispatcher) Slots(key model.Key) []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	slots, ok := d.current[key]
	if !ok {
		return nil
	}
	out := make([]time.Time, len(slots))
	copy(out, slots)
	return out
}

// KeyCount returns how many keys currently hold stored slots.
func (d *Dispatcher) KeyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.current)
}

// SubscriberCount returns the number of live subscriptions.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

func sortAppointments(apts []model.Appointment) {
	sort.Slice(apts, func(i, j int) bool {
		if !apts[i].Timestamp.Equal(apts[j].Timestamp) {
			return apts[i].Timestamp.Before(apts[j].Timestamp)
		}
		if apts[i].Site != apts[j].Site {
			return apts[i].Site < apts[j].Site
		}
		return apts[i].VehicleType < apts[j].VehicleType
	})
}
