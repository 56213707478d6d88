// Package server terminates the HTTP and WebSocket transport: REST
// endpoints for the enumerations and stored appointments, and the
// subscribe stream that feeds criteria to the dispatcher and pushes
// matching availability changes back.
package server
