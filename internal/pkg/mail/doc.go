// Package mail defines the contracts for sending email messages and the
// delivery drivers behind them.
//
// Handlers and use cases work with the Mail interface and the Message payload
// only. Drivers own everything transport-specific: connection setup, TLS,
// authentication and retries.
//
//   - SMTP: github.com/emersion/go-smtp with SASL PLAIN auth, implicit TLS or STARTTLS.
//   - SES: Amazon SES v2 API via aws-sdk-go-v2.
//
// NewFromDriver selects a driver by name and wraps it with WithRetry.
package mail
