package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"snct-watcher/internal/model"
)

const (
	siteListPath        = "/rdvct/secure/admin/site/list"
	vehicleTypeListPath = "/rdvct/secure/admin/vehicle/type/list"

	// availabilityPathFormat is
	// /betweenDates/{start}/{end}/{vehicleTypeID}/{siteID}/{userType}/{controlType}.
	availabilityPathFormat = "/rdvct/appointment/betweenDates/%s/%s/%d/%d/%s/%s"

	// slotLayout parses one flattened "date T time" pair. The service writes
	// times of day as "17H35".
	slotLayout = "2006-01-02T15H04"
)

// Site is one inspection site as listed by the booking service.
type Site struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// VehicleType is one accepted vehicle type as listed by the booking service.
type VehicleType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SiteList fetches the raw site enumeration.
func (c *Client) SiteList(ctx context.Context) ([]Site, error) {
	var sites []Site
	if err := c.getJSON(ctx, siteListPath, &sites); err != nil {
		return nil, fmt.Errorf("fetch site list: %w", err)
	}
	return sites, nil
}

// VehicleTypeList fetches the raw vehicle-type enumeration.
func (c *Client) VehicleTypeList(ctx context.Context) ([]VehicleType, error) {
	var types []VehicleType
	if err := c.getJSON(ctx, vehicleTypeListPath, &types); err != nil {
		return nil, fmt.Errorf("fetch vehicle type list: %w", err)
	}
	return types, nil
}

// Availability fetches the free slots for one category between two dates
// (inclusive start, upstream semantics). The response nests time of day
// over dates; the result is flattened, sorted, and deduplicated.
//
// The documented "no technical results" 400 yields an empty slice, not an
// error.
func (c *Client) Availability(ctx context.Context, start, end time.Time, vehicleTypeID, siteID int, userType, controlType string, loc *time.Location) ([]time.Time, error) {
	path := fmt.Sprintf(availabilityPathFormat,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		vehicleTypeID, siteID, userType, controlType,
	)

	body, err := c.doGet(ctx, path)
	if err != nil {
		if errors.Is(err, errNoResults) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch availability: %w", err)
	}

	return parseSlots(body, loc)
}

// parseSlots flattens the {"17H35": ["2026-01-02", ...], ...} payload into
// sorted unique timestamps.
func parseSlots(body []byte, loc *time.Location) ([]time.Time, error) {
	var byTime map[string][]string
	if err := json.Unmarshal(body, &byTime); err != nil {
		return nil, fmt.Errorf("unmarshal availability: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var slots []time.Time
	for timeOfDay, dates := range byTime {
		for _, date := range dates {
			ts, err := time.ParseInLocation(slotLayout, date+"T"+timeOfDay, loc)
			if err != nil {
				return nil, fmt.Errorf("parse slot %q %q: %w", date, timeOfDay, err)
			}
			slots = append(slots, ts)
		}
	}
	return model.NormalizeSlots(slots), nil
}
