package usecase

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/waitlist/internal/pkg/clock"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
	"github.com/shandysiswandi/waitlist/internal/pkg/instrument"
	"github.com/shandysiswandi/waitlist/internal/pkg/mail"
	"github.com/shandysiswandi/waitlist/internal/pkg/validator"
	"github.com/shandysiswandi/waitlist/internal/waitlist/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultProductName     = "Student AI Helper"
	defaultDispatchTimeout = 30 * time.Second
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	cfg         config.Config
	clock       clock.Clocker
	validator   validator.Validator
	repoMail    repoMail
	ins         instrument.Instrumentation
	templates   *template.Template
	submissions metric.Int64Counter
	dispatches  metric.Int64Counter
}

type Dependency struct {
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	Instrument instrument.Instrumentation
}

func NewWaitlist(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("waitlist.usecase")

	submissions, err := meter.Int64Counter("waitlist.submissions", metric.WithDescription("Number of waitlist submissions by outcome"))
	if err != nil {
		slog.Error("failed to create waitlist submissions counter", "error", err)
	}

	dispatches, err := meter.Int64Counter("waitlist.dispatches", metric.WithDescription("Number of waitlist emails dispatched by kind and outcome"))
	if err != nil {
		slog.Error("failed to create waitlist dispatches counter", "error", err)
	}

	return &Usecase{
		cfg:         dep.Config,
		clock:       dep.Clock,
		validator:   dep.Validator,
		repoMail:    dep.RepoMail,
		ins:         dep.Instrument,
		templates:   template.Must(template.New("waitlist").Option("missingkey=zero").Parse(emailTemplates)),
		submissions: submissions,
		dispatches:  dispatches,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("waitlist.usecase").Start(ctx, name)
}

func (s *Usecase) renderTemplate(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) productName() string {
	if name := s.cfg.GetString("modules.waitlist.product_name"); name != "" {
		return name
	}
	return defaultProductName
}

func (s *Usecase) dispatchTimeout() time.Duration {
	if timeout := s.cfg.GetSecond("modules.waitlist.dispatch_timeout_seconds"); timeout > 0 {
		return timeout
	}
	return defaultDispatchTimeout
}

// operatorMailboxes returns the operator alert recipients, or nil when the
// alert is switched off or no address is configured.
func (s *Usecase) operatorMailboxes() []string {
	if !s.cfg.GetBool("modules.waitlist.notify_operator") {
		return nil
	}
	return lo.Uniq(s.cfg.GetArray("modules.waitlist.operator_emails"))
}

func (s *Usecase) dispatch(ctx context.Context, kind entity.DispatchKind, msg mail.Message) error {
	err := s.repoMail.Send(ctx, msg)

	if s.dispatches != nil {
		outcome := "sent"
		if err != nil {
			outcome = "failed"
		}
		s.dispatches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("outcome", outcome),
		))
	}

	return err
}

func (s *Usecase) recordSubmission(ctx context.Context, outcome entity.Outcome) {
	if s.submissions == nil {
		return
	}
	s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}
