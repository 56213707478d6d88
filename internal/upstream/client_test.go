package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSiteList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != siteListPath {
			t.Errorf("path = %q, want %q", r.URL.Path, siteListPath)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Esch/Alzette"},{"id":2,"name":"Sandweiler"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	sites, err := c.SiteList(context.Background())
	if err != nil {
		t.Fatalf("SiteList failed: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("len(sites) = %d, want 2", len(sites))
	}
	if sites[0].ID != 1 || sites[0].Name != "Esch/Alzette" {
		t.Errorf("sites[0] = %+v", sites[0])
	}
}

func TestVehicleTypeList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":10,"name":"Voiture"},{"id":11,"name":"Camionnette"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	types, err := c.VehicleTypeList(context.Background())
	if err != nil {
		t.Fatalf("VehicleTypeList failed: %v", err)
	}
	if len(types) != 2 || types[1].Name != "Camionnette" {
		t.Errorf("types = %+v", types)
	}
}

func TestAvailabilityFlattensAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"17H35":["2026-03-02","2026-03-01"],"08H00":["2026-03-02"]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 70)

	slots, err := c.Availability(context.Background(), start, end, 10, 1, "PRIVATE", "REGULAR", time.UTC)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}

	want := []time.Time{
		time.Date(2026, 3, 1, 17, 35, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 17, 35, 0, 0, time.UTC),
	}
	if len(slots) != len(want) {
		t.Fatalf("len(slots) = %d, want %d: %v", len(slots), len(want), slots)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slots[%d] = %v, want %v", i, slots[i], want[i])
		}
	}
}

func TestAvailabilityRequestPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	if _, err := c.Availability(context.Background(), start, end, 10, 3, "PROFESSIONAL", "REJECTED", time.UTC); err != nil {
		t.Fatalf("Availability failed: %v", err)
	}

	want := "/rdvct/appointment/betweenDates/2026-03-01/2026-05-10/10/3/PROFESSIONAL/REJECTED"
	if gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestAvailabilityTechnicalErrorMeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"1","type":"TECHNICAL"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	slots, err := c.Availability(context.Background(), start, start.AddDate(0, 0, 70), 10, 1, "PRIVATE", "REGULAR", time.UTC)
	if err != nil {
		t.Fatalf("technical error should not surface: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want empty", slots)
	}
}

func TestAvailabilityUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.Availability(context.Background(), start, start.AddDate(0, 0, 70), 10, 1, "PRIVATE", "REGULAR", time.UTC)
	if err == nil {
		t.Fatal("expected error on 500")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestUnexpected400IsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"7","type":"FUNCTIONAL"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.Availability(context.Background(), start, start.AddDate(0, 0, 70), 10, 1, "PRIVATE", "REGULAR", time.UTC)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
}
