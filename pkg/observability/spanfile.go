package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanRecord is the JSON form of a finished span.
type SpanRecord struct {
	Name       string            `json:"name"`
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	ParentID   string            `json:"parent_id,omitempty"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// FileExporter collects finished spans and writes them to a JSON file on
// Shutdown. It backs the --debug-dir span dump.
type FileExporter struct {
	path  string
	mu    sync.Mutex
	spans []SpanRecord
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// NewFileExporter creates an exporter that writes to path.
func NewFileExporter(path string) *FileExporter {
	return &FileExporter{path: path}
}

// SetPath changes the file Shutdown writes to.
func (e *FileExporter) SetPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.path = path
}

// ExportSpans buffers spans.
func (e *FileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range spans {
		rec := SpanRecord{
			Name:       s.Name(),
			TraceID:    s.SpanContext().TraceID().String(),
			SpanID:     s.SpanContext().SpanID().String(),
			Start:      s.StartTime(),
			End:        s.EndTime(),
			DurationMs: s.EndTime().Sub(s.StartTime()).Milliseconds(),
			Status:     s.Status().Code.String(),
		}
		if s.Parent().HasSpanID() {
			rec.ParentID = s.Parent().SpanID().String()
		}
		if attrs := s.Attributes(); len(attrs) > 0 {
			rec.Attributes = make(map[string]string, len(attrs))
			for _, kv := range attrs {
				rec.Attributes[string(kv.Key)] = kv.Value.Emit()
			}
		}
		e.spans = append(e.spans, rec)
	}
	return nil
}

// Spans returns a copy of the buffered spans.
func (e *FileExporter) Spans() []SpanRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SpanRecord(nil), e.spans...)
}

// Shutdown writes the buffered spans as indented JSON.
func (e *FileExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating span directory: %w", err)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e.spans); err != nil {
		return fmt.Errorf("encoding spans: %w", err)
	}
	return os.WriteFile(e.path, buf.Bytes(), 0644)
}

// NewFileTracerProvider returns a provider that records every span
// synchronously into a FileExporter at path.
func NewFileTracerProvider(path string) (*sdktrace.TracerProvider, *FileExporter) {
	exp := NewFileExporter(path)
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), exp
}
