// Package catalog holds the enumerations discovered from the booking
// service at startup: inspection sites (per organism) and vehicle types,
// with their upstream identifiers. Names are normalized into stable ASCII
// identifiers before storage so they can be used as URL path segments and
// subscription key fields.
package catalog
