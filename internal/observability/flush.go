package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry flushes telemetry buffers before process exit.
// Prometheus is pull-based, so this drains the buffered log writer.
// Call during graceful shutdown after in-flight requests have drained.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	if logBuffer != nil {
		if err := logBuffer.Stop(); err != nil {
			return fmt.Errorf("stop log buffer: %w", err)
		}
	}
	return ctx.Err()
}
