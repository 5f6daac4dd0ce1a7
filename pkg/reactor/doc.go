// Package reactor implements the I/O reactor shared by every Transport in
// this module: a readiness poller, a pre-allocated event buffer, and a
// monotonically increasing token allocator used to demultiplex readiness
// to the owning socket.
//
// The reactor is never a process-wide singleton. It is constructed once by
// the host application and passed by reference to anything that needs to
// register a socket, keeping ownership and threading explicit (see
// spec.md §5, §9).
//
// On Linux the reactor is backed by epoll via golang.org/x/sys/unix,
// mirroring the level-triggered readiness model the original Rust
// implementation got from mio::Poll.
package reactor
