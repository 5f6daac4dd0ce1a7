package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends the CBOR-encoded event trace of a CASTV2 session to a
// file (conventionally named with a ".clog" extension, see doc.go). It is
// safe for concurrent use: Device.HandleIO and any goroutine closing the
// session down may call it without external synchronization.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewFileLogger opens (creating if necessary) path for append and returns a
// FileLogger writing to it. Re-opening an existing trace resumes the file
// rather than truncating it, so a device reconnect's events are appended
// after whatever was captured before.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f, encoder: NewEncoder(f)}, nil
}

// Log encodes event and appends it to the file. A write or encode failure
// is swallowed: a broken trace must never be allowed to disrupt the
// session it's observing.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the underlying file. Calling Close more than once is a
// no-op; Log calls after Close are silently dropped rather than erroring.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
