package config

import (
	"fmt"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Lock.TTL < time.Second {
		return fmt.Errorf("lock.ttl must be at least 1s (got %v)", c.Lock.TTL)
	}

	if c.Workflow.MaxRecipients <= 0 {
		return fmt.Errorf("workflow.max_recipients must be > 0 (got %d)", c.Workflow.MaxRecipients)
	}
	if c.Workflow.RollbackRetentionDays <= 0 {
		return fmt.Errorf("workflow.rollback_retention_days must be > 0 (got %d)", c.Workflow.RollbackRetentionDays)
	}

	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox.poll_interval must be > 0 (got %v)", c.Outbox.PollInterval)
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox.batch_size must be > 0 (got %d)", c.Outbox.BatchSize)
	}
	if c.Outbox.MaxAttempts <= 0 {
		return fmt.Errorf("outbox.max_attempts must be > 0 (got %d)", c.Outbox.MaxAttempts)
	}

	return nil
}
