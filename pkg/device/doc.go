// Package device implements the session-level CASTV2 state machine:
// opening a virtual connection, answering heartbeats, tracking receiver
// status, and exposing the launch/stop/volume command surface plus a
// bounded domain-event queue (spec.md §4.6).
package device
