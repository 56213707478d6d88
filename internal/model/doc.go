// Package model defines the core domain types shared across components:
// the appointment category Key, slot timestamp helpers, appointment change
// events, and subscriber criteria.
package model
