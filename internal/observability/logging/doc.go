// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Channel ID propagation for ingestion runs
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "content-harvester/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func runIngestion(ctx context.Context, channelID string) {
//	    logger := logging.WithChannel(slog.Default(), channelID)
//	    logger.Info("starting ingestion")
//	}
package logging
