package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/waitlist/internal/pkg/mail"
	"github.com/shandysiswandi/waitlist/internal/waitlist/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type JoinInput struct {
	FullName     string `validate:"required,notblank"`
	Email        string `validate:"required,notblank"`
	FieldOfStudy string
}

// Join confirms a waitlist registration by email and, when enabled, alerts the
// operator mailboxes. Dispatches run in order and the first failure stops the
// flow. Every failure is an *entity.SubmissionError.
func (s *Usecase) Join(ctx context.Context, in JoinInput) (err error) {
	ctx, span := s.startSpan(ctx, "Join")
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.recordSubmission(ctx, entity.OutcomeFailed)
			return
		}
		s.recordSubmission(ctx, entity.OutcomeAccepted)
	}()

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)

	if err := s.validator.Validate(in); err != nil {
		return entity.NewSubmissionError(entity.KindMalformedInput, entity.StepValidate, err)
	}

	reg := entity.Registration{
		FullName:     in.FullName,
		Email:        in.Email,
		FieldOfStudy: in.FieldOfStudy,
	}

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout())
	defer cancel()

	product := s.productName()

	confirmation, err := s.composeConfirmation(product, reg)
	if err != nil {
		return entity.NewSubmissionError(entity.KindComposeFailure, entity.StepComposeConfirmation, err)
	}

	if err := s.dispatch(dctx, entity.DispatchConfirmation, confirmation); err != nil {
		return entity.NewSubmissionError(entity.KindDispatchFailure, entity.StepSendConfirmation, err)
	}

	operators := s.operatorMailboxes()
	span.SetAttributes(attribute.Int("waitlist.operator_mailboxes", len(operators)))
	if len(operators) == 0 {
		slog.InfoContext(ctx, "waitlist submission accepted", "email", reg.Email, "operator_alerted", false)
		return nil
	}

	alert, err := s.composeOperatorAlert(product, reg, operators)
	if err != nil {
		return entity.NewSubmissionError(entity.KindComposeFailure, entity.StepComposeOperatorAlert, err)
	}

	if err := s.dispatch(dctx, entity.DispatchOperatorAlert, alert); err != nil {
		return entity.NewSubmissionError(entity.KindDispatchFailure, entity.StepSendOperatorAlert, err)
	}

	slog.InfoContext(ctx, "waitlist submission accepted", "email", reg.Email, "operator_alerted", true)

	return nil
}

func (s *Usecase) composeConfirmation(product string, reg entity.Registration) (mail.Message, error) {
	body, err := s.renderTemplate("confirmation", map[string]any{
		"product":        product,
		"full_name":      reg.FullName,
		"field_of_study": reg.FieldOfStudy,
	})
	if err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		From:     s.cfg.GetString("mail.from"),
		To:       []string{reg.Email},
		Subject:  "Welcome to " + product + " Waitlist",
		HTMLBody: body,
	}, nil
}

func (s *Usecase) composeOperatorAlert(product string, reg entity.Registration, operators []string) (mail.Message, error) {
	body, err := s.renderTemplate("operator_alert", map[string]any{
		"product":        product,
		"full_name":      reg.FullName,
		"email":          reg.Email,
		"field_of_study": reg.FieldOfStudy,
		"submitted_at":   s.clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		From:     s.cfg.GetString("mail.from"),
		To:       operators,
		Subject:  "New " + product + " waitlist registration",
		HTMLBody: body,
	}, nil
}
