package dispatcher

import (
	"fmt"
	"strings"
	"time"

	"snct-watcher/internal/model"
)

// ValidationError reports a client-supplied field that failed validation.
// It is surfaced as a 400 with a message naming the field and, when the
// field is an enumeration, its allowed values.
type ValidationError struct {
	Field   string
	Message string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s must be one of: %s", e.Field, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

const timeLayoutFallback = "2006-01-02T15:04:05"

// parseTime accepts RFC 3339 or a naive local timestamp in the service's
// time zone.
func (d *Dispatcher) parseTime(field, value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(timeLayoutFallback, value, d.loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("is not a valid timestamp: %q", value)}
	}
	return ts, nil
}

// ValidateKey checks every key field against the currently known
// enumerations. The first invalid field wins.
func (d *Dispatcher) ValidateKey(key model.Key) error {
	if !contains(model.UserTypes, key.UserType) {
		return &ValidationError{Field: "user_type", Allowed: model.UserTypes}
	}
	if !contains(model.ControlTypes, key.ControlType) {
		return &ValidationError{Field: "control_type", Allowed: model.ControlTypes}
	}
	if !contains(model.Organisms, key.Organism) {
		return &ValidationError{Field: "organism", Allowed: model.Organisms}
	}
	if _, ok := d.catalog.VehicleTypeID(key.VehicleType); !ok {
		return &ValidationError{Field: "vehicle_type", Allowed: d.catalog.VehicleTypes()}
	}
	if _, ok := d.catalog.SiteID(key.Organism, key.Site); !ok {
		return &ValidationError{Field: "site", Allowed: d.catalog.SiteNames(key.Organism)}
	}
	return nil
}

// parseCriteria validates and converts a full criteria list. No partial
// result is ever returned: the first invalid field fails the whole list.
func (d *Dispatcher) parseCriteria(specs []CriterionSpec) ([]model.Criterion, error) {
	criteria := make([]model.Criterion, 0, len(specs))
	for _, spec := range specs {
		key := model.Key{
			UserType:    spec.UserType,
			ControlType: spec.ControlType,
			VehicleType: spec.VehicleType,
			Organism:    spec.Organism,
			Site:        spec.Site,
		}
		if err := d.ValidateKey(key); err != nil {
			return nil, err
		}
		start, err := d.parseTime("start", spec.Start)
		if err != nil {
			return nil, err
		}
		end, err := d.parseTime("end", spec.End)
		if err != nil {
			return nil, err
		}
		if start.After(end) {
			return nil, &ValidationError{Field: "start", Message: "must not be after end"}
		}
		criteria = append(criteria, model.Criterion{Key: key, Start: start, End: end})
	}
	return criteria, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
