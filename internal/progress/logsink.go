package progress

import "go.uber.org/zap"

// LogSink forwards events to a zap logger. Per-item progress goes to debug
// so an info-level console stays readable on large projects.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink writing to logger; nil means no output.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Emit implements Sink
func (s *LogSink) Emit(e Event) {
	fields := []zap.Field{zap.String("stage", string(e.Stage))}
	if e.Path != "" {
		fields = append(fields, zap.String("path", e.Path))
	}
	if e.Total > 0 {
		fields = append(fields, zap.Int("total", e.Total))
	}
	if e.Done > 0 {
		fields = append(fields, zap.Int("done", e.Done))
	}
	if e.Bytes > 0 {
		fields = append(fields, zap.Int64("bytes", e.Bytes))
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Stage) + " " + string(e.Kind)
	}

	switch e.Kind {
	case KindProgress:
		s.logger.Debug(msg, fields...)
	case KindWarning:
		s.logger.Warn(msg, fields...)
	case KindError:
		s.logger.Error(msg, fields...)
	default:
		s.logger.Info(msg, fields...)
	}
}
