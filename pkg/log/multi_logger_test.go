package log

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	}

	multi.Log(event)

	// All loggers should have received the event
	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if !assert.Len(t, mock.events, 1, "logger %d", i) {
			continue
		}
		assert.Equal(t, "conn-123", mock.events[0].ConnectionID, "logger %d", i)
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	}

	multi.Log(event)
}

func TestMultiLoggerSingleLogger(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(mock)

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-456",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryMessage,
	}

	multi.Log(event)

	require.Len(t, mock.events, 1)
	assert.Equal(t, "conn-456", mock.events[0].ConnectionID)
}

func TestMultiLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*MultiLogger)(nil)
}
