// Package log provides structured protocol logging for this CASTV2 client.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, wire, device).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	protoLogger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	protoLogger, _ := log.NewFileLogger("/var/log/castv2/device.clog")
//
//	// Both: use MultiLogger
//	protoLogger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Wire: Decoded messages (MessageEvent)
//   - Device: Session state changes (StateChangeEvent)
//
// Control messages (ping/pong/close) and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding with the .clog extension.
package log
