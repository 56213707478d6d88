package fetcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"snct-watcher/internal/catalog"
	"snct-watcher/internal/model"
	"snct-watcher/internal/upstream"
)

// Result is the outcome of refreshing one key: either a sorted set of
// unique slot timestamps, or a failure marker carrying the error. Keys
// whose refresh was never attempted are simply absent from the snapshot.
type Result struct {
	Slots []time.Time
	Err   error
}

// Failed reports whether this key's refresh failed.
func (r Result) Failed() bool { return r.Err != nil }

// Snapshot maps every attempted key to its refresh outcome.
type Snapshot = map[model.Key]Result

// SnapshotHandler receives the snapshot of each completed refresh cycle.
type SnapshotHandler interface {
	HandleSnapshot(snap Snapshot)
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(Snapshot)

func (f SnapshotHandlerFunc) HandleSnapshot(snap Snapshot) { f(snap) }

// Config holds fetcher configuration.
type Config struct {
	Interval    time.Duration // Refresh interval (default: 60s)
	Concurrency int64         // Max simultaneous upstream requests (default: 10)
	Timeout     time.Duration // Per-request timeout (default: 10s)
	Window      time.Duration // Search horizon from today (default: 10 weeks)
}

// DefaultConfig returns the defaults used against the production service.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Minute,
		Concurrency: 10,
		Timeout:     10 * time.Second,
		Window:      10 * 7 * 24 * time.Hour,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
}

// Fetcher periodically refreshes the catalog and slot availability.
//
// Cycles are strictly serialized: the loop runs them one at a time from a
// single goroutine, so a cycle that outlives the interval delays the next
// tick instead of overlapping it.
type Fetcher struct {
	cfg     Config
	client  *upstream.Client
	catalog *catalog.Catalog
	handler SnapshotHandler
	logger  *slog.Logger
	loc     *time.Location

	sem *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Fetcher. Slot timestamps and search windows are expressed
// in loc, the booking service's local time zone.
func New(cfg Config, client *upstream.Client, cat *catalog.Catalog, handler SnapshotHandler, loc *time.Location, logger *slog.Logger) *Fetcher {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Fetcher{
		cfg:     cfg,
		client:  client,
		catalog: cat,
		handler: handler,
		logger:  logger,
		loc:     loc,
		sem:     semaphore.NewWeighted(cfg.Concurrency),
	}
}

// Start runs one refresh cycle synchronously, then launches the periodic
// loop. A failing first cycle is logged, not fatal: the loop retries every
// interval and readiness simply arrives later.
func (f *Fetcher) Start(ctx context.Context) error {
	f.ctx, f.cancel = context.WithCancel(ctx)

	f.refresh()

	f.wg.Add(1)
	go f.run()

	f.logger.Info("fetcher started",
		"interval", f.cfg.Interval,
		"concurrency", f.cfg.Concurrency,
	)
	return nil
}

// Stop cancels the loop. An in-flight cycle is abandoned: its snapshot is
// discarded rather than published partially.
func (f *Fetcher) Stop(ctx context.Context) error {
	if f.cancel != nil {
		f.cancel()
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.logger.Info("fetcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the periodic loop. The initial cycle already ran in Start.
func (f *Fetcher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.refresh()
		}
	}
}

// refresh runs one full cycle: catalog if needed, then availability.
func (f *Fetcher) refresh() {
	if f.ctx.Err() != nil {
		return
	}

	if err := f.RefreshCatalog(f.ctx); err != nil {
		f.logger.Error("catalog refresh failed", "err", err)
	}
	if !f.catalog.Ready() {
		f.logger.Warn("catalog not loaded yet, skipping availability refresh")
		return
	}

	snap := f.refreshAvailability()

	// An abandoned cycle must not publish a partial snapshot.
	if f.ctx.Err() != nil {
		f.logger.Info("refresh cycle abandoned", "keys_fetched", len(snap))
		return
	}

	if f.handler != nil {
		f.handler.HandleSnapshot(snap)
	}
}

// RefreshCatalog fetches the site and vehicle-type enumerations. The two
// calls are independent: one failing does not discard the other's result.
func (f *Fetcher) RefreshCatalog(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		rawSites, err := f.client.SiteList(ctx)
		if err != nil {
			return err
		}
		sites := make(map[catalog.SiteKey]int, len(rawSites))
		for _, s := range rawSites {
			key := catalog.SiteKey{
				Organism: model.Organisms[0],
				Site:     catalog.NormalizeSiteName(s.Name),
			}
			sites[key] = s.ID
		}
		f.catalog.ReplaceSites(sites)
		f.logger.Info("site catalog refreshed", "sites", len(sites))
		return nil
	})

	g.Go(func() error {
		rawTypes, err := f.client.VehicleTypeList(ctx)
		if err != nil {
			return err
		}
		types := make(map[string]int, len(rawTypes))
		for _, vt := range rawTypes {
			types[catalog.NormalizeVehicleType(vt.Name)] = vt.ID
		}
		f.catalog.ReplaceVehicleTypes(types)
		f.logger.Info("vehicle type catalog refreshed", "types", len(types))
		return nil
	})

	return g.Wait()
}

// keyTarget pairs a key with the upstream identifiers needed to query it.
type keyTarget struct {
	key           model.Key
	vehicleTypeID int
	siteID        int
}

// targets enumerates the full key space from the current catalog.
func (f *Fetcher) targets() []keyTarget {
	sites := f.catalog.Sites()
	vehicleTypes := f.catalog.VehicleTypes()

	var out []keyTarget
	for _, userType := range model.UserTypes {
		for _, controlType := range model.ControlTypes {
			for _, vt := range vehicleTypes {
				vtID, ok := f.catalog.VehicleTypeID(vt)
				if !ok {
					continue
				}
				for _, site := range sites {
					siteID, ok := f.catalog.SiteID(site.Organism, site.Site)
					if !ok {
						continue
					}
					out = append(out, keyTarget{
						key: model.Key{
							UserType:    userType,
							ControlType: controlType,
							VehicleType: vt,
							Organism:    site.Organism,
							Site:        site.Site,
						},
						vehicleTypeID: vtID,
						siteID:        siteID,
					})
				}
			}
		}
	}
	return out
}

// refreshAvailability queries every key once, bounded by the permit pool.
// A failing key is recorded as a failure marker and never taints the rest
// of the cycle.
func (f *Fetcher) refreshAvailability() Snapshot {
	start := time.Now()
	targets := f.targets()

	snap := make(Snapshot, len(targets))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var fetched, failed int

	winStart, winEnd := f.window()

	for _, t := range targets {
		wg.Add(1)
		go func(t keyTarget) {
			defer wg.Done()

			if err := f.sem.Acquire(f.ctx, 1); err != nil {
				// Shutdown: leave the key absent.
				return
			}
			defer f.sem.Release(1)

			ctx, cancel := context.WithTimeout(f.ctx, f.cfg.Timeout)
			defer cancel()

			slots, err := f.client.Availability(ctx, winStart, winEnd,
				t.vehicleTypeID, t.siteID, t.key.UserType, t.key.ControlType, f.loc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.logger.Warn("availability refresh failed for key",
					"user_type", t.key.UserType,
					"control_type", t.key.ControlType,
					"vehicle_type", t.key.VehicleType,
					"organism", t.key.Organism,
					"site", t.key.Site,
					"err", err,
				)
				snap[t.key] = Result{Err: err}
				failed++
				return
			}
			snap[t.key] = Result{Slots: slots}
			fetched++
		}(t)
	}

	wg.Wait()

	f.logger.Info("availability refresh complete",
		"keys", len(targets),
		"fetched", fetched,
		"failed", failed,
		"duration", time.Since(start),
	)
	return snap
}

// window returns the search horizon: today through Window from now, as
// local dates at the booking service.
func (f *Fetcher) window() (time.Time, time.Time) {
	now := time.Now().In(f.loc)
	return now, now.Add(f.cfg.Window)
}
