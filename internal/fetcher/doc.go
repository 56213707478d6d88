// Package fetcher drives the periodic refresh of the booking service data:
// the site and vehicle-type catalog, then one availability request per
// category key under a bounded-concurrency permit pool. Each completed
// cycle produces a snapshot handed to a SnapshotHandler.
package fetcher
