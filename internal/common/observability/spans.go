// internal/common/observability/spans.go
package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"assistant-engine/internal/common/logger"
)

// logSpanProcessor writes every finished span to the service log at debug
// level. It is the only span sink; there is no trace backend to export to.
type logSpanProcessor struct {
	logger logger.Logger
}

func newLogSpanProcessor(log logger.Logger) *logSpanProcessor {
	return &logSpanProcessor{logger: log.With(map[string]interface{}{"component": "tracing"})}
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":        s.Name(),
		"trace_id":    s.SpanContext().TraceID().String(),
		"span_id":     s.SpanContext().SpanID().String(),
		"duration_ms": s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status":      s.Status().Code.String(),
	}
	if parent := s.Parent(); parent.IsValid() {
		fields["parent_span_id"] = parent.SpanID().String()
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	if n := len(s.Events()); n > 0 {
		fields["events"] = n
	}
	p.logger.Debug("span finished", fields)
}

func (p *logSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
