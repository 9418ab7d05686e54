package events

import (
	"time"

	"go.uber.org/zap"
)

// Publish sends a change notification without blocking the caller. A nil
// publisher is allowed; failures are logged and otherwise ignored because the
// change is already committed.
func Publish(client EventPublisher, logger *zap.Logger, event Event) {
	if client == nil {
		return
	}
	if event.Type == "" {
		event.Type = EventDatabaseChanged
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := client.SendEvent(event); err != nil {
		if logger == nil {
			logger = zap.L()
		}
		logger.Warn("failed to send event",
			zap.Int("organization_id", event.OrganizationID),
			zap.String("entity", event.Entity),
			zap.Int("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// PublishWithRetry attempts to publish an event with retry logic.
// It makes up to maxRetries attempts with exponential backoff.
// Returns the error from the final attempt if all retries fail.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := client.SendEvent(event)
		if err == nil {
			if attempt > 0 {
				zap.L().Debug("event published after retry",
					zap.Int("attempt", attempt+1),
					zap.String("event_type", string(event.Type)),
					zap.Int("organization_id", event.OrganizationID))
			}
			return nil
		}

		lastErr = err

		if attempt < maxRetries-1 {
			// 50ms, 100ms, 200ms ...
			delay := baseDelay * (1 << attempt)
			zap.L().Debug("event publish failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err))
			time.Sleep(delay)
		}
	}

	zap.L().Warn("event publish failed after all retries",
		zap.Int("attempts", maxRetries),
		zap.String("event_type", string(event.Type)),
		zap.Int("organization_id", event.OrganizationID),
		zap.Error(lastErr))

	return lastErr
}
