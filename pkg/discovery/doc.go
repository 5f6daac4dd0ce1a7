// Package discovery is the boundary to the external mDNS source used to
// find Cast receivers on the local network. It is reduced to the
// interface "produces a stream of {IPv4 address, UUID} records over a
// bounded time window" (spec.md §1, §4.7); everything upstream of that
// boundary — this client's Connection, Device, and Transport — never
// imports an mDNS library directly.
package discovery
