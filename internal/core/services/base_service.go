package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsevents "github.com/SscSPs/budget_engine/internal/core/ports/events"
	"github.com/SscSPs/budget_engine/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Events portsevents.Publisher
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		// Return a default logger if not found in context
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Publish hands a committed event to the configured publisher.
// Delivery errors are logged and swallowed; the change that produced the event stands.
func (s *BaseService) Publish(ctx context.Context, event domain.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish event",
			slog.String("event_type", string(event.Type)))
	}
}
