package core

import (
	"context"
	"maps"
	"sort"
	"strings"
	"time"
)

func (p *Provider) observeOperation(ctx context.Context, startedAt time.Time, operation string, err error) {
	if p == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	p.recordCounter(ctx, "authprovider."+operation+".total", 1, tags)
	p.recordHistogram(ctx, "authprovider."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
}

func (p *Provider) logDebug(message string, fields map[string]any) {
	p.logWithLevel("debug", message, fields)
}

// logError logs a failure before it is surfaced to the caller.
func (p *Provider) logError(message string, err error, fields map[string]any) {
	fields = cloneFields(fields)
	if err != nil {
		fields["error"] = err.Error()
		if code := ErrorTextCode(err); code != "" {
			fields["text_code"] = code
		}
	}
	p.logWithLevel("error", message, fields)
}

func (p *Provider) logWithLevel(level string, message string, fields map[string]any) {
	if p == nil {
		return
	}
	logger := p.currentLogger()
	if logger == nil {
		return
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok && len(fields) > 0 {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (p *Provider) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if p == nil || p.metricsRecorder == nil {
		return
	}
	p.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (p *Provider) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if p == nil || p.metricsRecorder == nil {
		return
	}
	p.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

// NopMetricsRecorder is the default recorder.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// cloneTags hands recorders a map they may keep.
func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	maps.Copy(out, tags)
	return out
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}

var _ MetricsRecorder = NopMetricsRecorder{}
