package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one user-facing message.
type Notice struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Operation string            `json:"operation"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Success builds a success notice for operation.
func Success(operation, message string) Notice {
	return newNotice(LevelSuccess, operation, message)
}

// Failure builds an error notice for operation.
func Failure(operation, message string) Notice {
	return newNotice(LevelError, operation, message)
}

func newNotice(level Level, operation, message string) Notice {
	return Notice{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Level:     level,
		Operation: operation,
		Message:   message,
	}
}

// With returns a copy of n carrying an extra metadata pair.
func (n Notice) With(key, value string) Notice {
	md := make(map[string]string, len(n.Metadata)+1)
	for k, v := range n.Metadata {
		md[k] = v
	}
	md[key] = value
	n.Metadata = md
	return n
}

// Sink receives notices.
type Sink interface {
	Emit(ctx context.Context, n Notice)
}

// Emitter is what stores depend on. Both [Dispatcher] and every [Sink] satisfy it.
type Emitter = Sink

// NoOpSink drops notices.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Notice) {}

// ChannelSink writes notices into a buffered channel.
type ChannelSink struct {
	notices chan Notice
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		notices: make(chan Notice, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, n Notice) {
	select {
	case s.notices <- n:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Notices() <-chan Notice {
	return s.notices
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, n Notice) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// SlogSink logs notices: successes at Info, failures at Warn.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	attrs := []any{"id", n.ID, "operation", n.Operation}
	for k, v := range n.Metadata {
		attrs = append(attrs, k, v)
	}
	s.logger.Log(ctx, level, n.Message, attrs...)
}

// MultiSink fans a notice out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, n Notice) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, n)
		}
	}
}
