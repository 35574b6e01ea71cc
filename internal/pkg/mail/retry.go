package mail

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/sethvargo/go-retry"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first. Zero disables retries.
	MaxRetries uint64
	// BaseDelay is the first backoff interval. Zero means 200ms.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff interval. Zero means uncapped.
	MaxDelay time.Duration
}

type retrying struct {
	next Mail
	cfg  RetryConfig
}

// WithRetry wraps next so transient failures are retried with exponential
// backoff. Permanent failures and context errors return immediately.
func WithRetry(next Mail, cfg RetryConfig) Mail {
	if cfg.MaxRetries == 0 {
		return next
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	return &retrying{next: next, cfg: cfg}
}

func (r *retrying) Send(ctx context.Context, msg Message) error {
	b := retry.NewExponential(r.cfg.BaseDelay)
	if r.cfg.MaxDelay > 0 {
		b = retry.WithCappedDuration(r.cfg.MaxDelay, b)
	}
	b = retry.WithMaxRetries(r.cfg.MaxRetries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := r.next.Send(ctx, msg)
		if err != nil && IsTransient(err) {
			slog.WarnContext(ctx, "mail send failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *retrying) Close() error {
	return r.next.Close()
}

// IsTransient reports whether err is worth another attempt: SMTP 4xx replies,
// network timeouts and failed dials.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 400 && smtpErr.Code < 500
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
