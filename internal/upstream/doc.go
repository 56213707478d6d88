// Package upstream provides a REST client for the SNCT appointment-booking
// service: the site and vehicle-type enumerations and per-category slot
// availability.
package upstream
