package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"watchbox/config"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

type Config struct {
	Enabled         bool
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	JitterEnabled   bool
	RetryOnDeadlock bool
	RetryOnLockWait bool
	// RetryPredicate marks additional errors as retryable
	RetryPredicate func(error) bool
}

var DefaultConfig = Config{
	Enabled:         true,
	MaxAttempts:     3,
	InitialDelay:    100 * time.Millisecond,
	MaxDelay:        2 * time.Second,
	BackoffFactor:   2.0,
	JitterEnabled:   true,
	RetryOnDeadlock: true,
	RetryOnLockWait: true,
}

func FromConfig(rc config.RetryConfig) Config {
	c := Config{
		Enabled:         rc.Enabled,
		MaxAttempts:     rc.MaxAttempts,
		InitialDelay:    rc.InitialDelay,
		MaxDelay:        rc.MaxDelay,
		BackoffFactor:   rc.BackoffFactor,
		JitterEnabled:   rc.JitterEnabled,
		RetryOnDeadlock: rc.RetryOnDeadlock,
		RetryOnLockWait: rc.RetryOnLockWait,
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = DefaultConfig.BackoffFactor
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultConfig.MaxDelay
	}
	return c
}

func ExponentialBackoffWithJitter(attempt int, config Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterEnabled {
		jitterFactor := 0.8 + rand.Float64()*0.4
		delay = delay * jitterFactor
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func IsRetryableError(err error, config Config) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if config.RetryPredicate != nil && config.RetryPredicate(err) {
		return true
	}

	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDeadlock:
			return config.RetryOnDeadlock
		case mysqlLockWaitTimeout:
			return config.RetryOnLockWait
		}
		return false
	}
	if errors.Is(err, mysqlDriver.ErrInvalidConn) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "deadlock") && config.RetryOnDeadlock {
		return true
	}
	if strings.Contains(errStr, "lock wait timeout") && config.RetryOnLockWait {
		return true
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) ||
		(strings.Contains(errStr, "connection") && strings.Contains(errStr, "lost")) {
		return true
	}
	return false
}

// ExecuteWithRetry runs fn until it succeeds, returns a non-retryable error,
// exhausts MaxAttempts or ctx is done.
func ExecuteWithRetry(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	if !config.Enabled {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryableError(err, config) || attempt == config.MaxAttempts {
			break
		}

		delay := ExponentialBackoffWithJitter(attempt, config)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}
