package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/waitlist/internal/pkg/clock"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
	"github.com/shandysiswandi/waitlist/internal/pkg/instrument"
	"github.com/shandysiswandi/waitlist/internal/pkg/mail"
	"github.com/shandysiswandi/waitlist/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

// fakeMail records every message and fails the call whose 1-based index is
// listed in failOn.
type fakeMail struct {
	mu     sync.Mutex
	sent   []mail.Message
	failOn map[int]error
	block  bool
}

func (f *fakeMail) Send(ctx context.Context, msg mail.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	n := len(f.sent)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := f.failOn[n]; ok {
		return err
	}
	return nil
}

func (f *fakeMail) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

func newTestUsecase(t *testing.T, yaml string, repo repoMail) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return NewWaitlist(Dependency{
		Config:     cfg,
		Clock:      clock.Fixed(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)),
		Validator:  v,
		RepoMail:   repo,
		Instrument: instrument.NewNoop(),
	})
}

const (
	configOperatorOff = `
mail:
  from: "team@example.com"
modules:
  waitlist:
    notify_operator: false
    operator_emails: "ops@example.com"
`
	configOperatorOn = `
mail:
  from: "team@example.com"
modules:
  waitlist:
    notify_operator: true
    operator_emails: "ops@example.com, founders@example.com, ops@example.com"
`
)

var errTransport = errors.New("535 5.7.8 username and password not accepted")
