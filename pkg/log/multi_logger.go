package log

// MultiLogger fans one Event out to every configured Logger in order, for
// example a console SlogAdapter and a FileLogger capturing a trace of the
// same session simultaneously.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger builds a MultiLogger over loggers, in the order they
// should each receive every event.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards event to each configured Logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
