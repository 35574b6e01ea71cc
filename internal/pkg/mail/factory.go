package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverSMTP selects the SMTP backend.
	DriverSMTP = "smtp"
	// DriverSES selects the Amazon SES backend.
	DriverSES = "ses"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// FactoryOptions groups configuration for mail drivers.
type FactoryOptions struct {
	// SMTP configures the SMTP backend.
	SMTP SMTPConfig
	// SES configures the SES backend.
	SES SESOptions
	// Retry wraps whichever backend is selected.
	Retry RetryConfig
}

// NewFromDriver constructs a Mail implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Mail, error) {
	var (
		m   Mail
		err error
	)

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP, "":
		m, err = NewSMTP(opts.SMTP)
	case DriverSES:
		m, err = NewSES(ctx, opts.SES)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(m, opts.Retry), nil
}
