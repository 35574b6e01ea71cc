package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/waitlist/internal/waitlist/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_Confirmation(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, configOperatorOff, repo)

	err := uc.Join(context.Background(), JoinInput{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		FieldOfStudy: "Mathematics",
	})
	require.NoError(t, err)

	msgs := repo.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"ada@example.com"}, msgs[0].To)
	assert.Equal(t, "team@example.com", msgs[0].From)
	assert.Equal(t, "Welcome to Student AI Helper Waitlist", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTMLBody, "Mathematics")
	assert.Contains(t, msgs[0].HTMLBody, "<p>Hi Ada Lovelace,</p>")
	assert.Contains(t, msgs[0].HTMLBody, "<h2>Welcome to Student AI Helper!</h2>")
	assert.Contains(t, msgs[0].HTMLBody, "Student AI Helper Team")
}

func TestJoin_ProductNameFromConfig(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, `
modules:
  waitlist:
    product_name: "Thesis Buddy"
`, repo)

	require.NoError(t, uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"}))

	msgs := repo.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Welcome to Thesis Buddy Waitlist", msgs[0].Subject)
	assert.Empty(t, msgs[0].From)
}

func TestJoin_EscapesUserInput(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, configOperatorOn, repo)

	err := uc.Join(context.Background(), JoinInput{
		FullName:     `<script>alert("x")</script>`,
		Email:        "ada@example.com",
		FieldOfStudy: `<img src=x onerror=alert(1)>`,
	})
	require.NoError(t, err)

	for _, msg := range repo.messages() {
		assert.NotContains(t, msg.HTMLBody, "<script>")
		assert.NotContains(t, msg.HTMLBody, "<img")
		assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
		assert.Contains(t, msg.HTMLBody, "&lt;img src=x onerror=alert(1)&gt;")
	}
}

func TestJoin_MissingFieldOfStudy(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, configOperatorOff, repo)

	require.NoError(t, uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"}))

	msgs := repo.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].HTMLBody, `field of study as "".`)
	assert.Contains(t, msgs[0].HTMLBody, "relevant to  students.")
	assert.NotContains(t, msgs[0].HTMLBody, "undefined")
	assert.NotContains(t, msgs[0].HTMLBody, "no value")
}

func TestJoin_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		in   JoinInput
	}{
		{name: "missing full name", in: JoinInput{Email: "ada@example.com"}},
		{name: "missing email", in: JoinInput{FullName: "Ada"}},
		{name: "blank full name", in: JoinInput{FullName: "   ", Email: "ada@example.com"}},
		{name: "blank email", in: JoinInput{FullName: "Ada", Email: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMail{}
			uc := newTestUsecase(t, configOperatorOn, repo)

			err := uc.Join(context.Background(), tt.in)

			assert.ErrorIs(t, err, &entity.SubmissionError{Kind: entity.KindMalformedInput, Step: entity.StepValidate})
			assert.Empty(t, repo.messages())
		})
	}
}

func TestJoin_OperatorAlert(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, configOperatorOn, repo)

	err := uc.Join(context.Background(), JoinInput{
		FullName:     " Ada Lovelace ",
		Email:        "ada@example.com",
		FieldOfStudy: "Mathematics",
	})
	require.NoError(t, err)

	msgs := repo.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"ada@example.com"}, msgs[0].To)
	assert.Equal(t, "Welcome to Student AI Helper Waitlist", msgs[0].Subject)

	assert.Equal(t, []string{"ops@example.com", "founders@example.com"}, msgs[1].To)
	assert.Equal(t, "New Student AI Helper waitlist registration", msgs[1].Subject)
	assert.Contains(t, msgs[1].HTMLBody, "Ada Lovelace")
	assert.Contains(t, msgs[1].HTMLBody, "ada@example.com")
	assert.Contains(t, msgs[1].HTMLBody, "Mathematics")
	assert.Contains(t, msgs[1].HTMLBody, "2026-03-01T09:30:00Z")
}

func TestJoin_OperatorEnabledWithoutAddress(t *testing.T) {
	repo := &fakeMail{}
	uc := newTestUsecase(t, `
modules:
  waitlist:
    notify_operator: true
    operator_emails: " , "
`, repo)

	require.NoError(t, uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"}))
	assert.Len(t, repo.messages(), 1)
}

func TestJoin_ConfirmationFailureShortCircuits(t *testing.T) {
	repo := &fakeMail{failOn: map[int]error{1: errTransport}}
	uc := newTestUsecase(t, configOperatorOn, repo)

	err := uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"})

	assert.ErrorIs(t, err, &entity.SubmissionError{Kind: entity.KindDispatchFailure, Step: entity.StepSendConfirmation})
	assert.ErrorIs(t, err, errTransport)
	assert.Len(t, repo.messages(), 1)
}

func TestJoin_OperatorAlertFailure(t *testing.T) {
	repo := &fakeMail{failOn: map[int]error{2: errTransport}}
	uc := newTestUsecase(t, configOperatorOn, repo)

	err := uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"})

	var serr *entity.SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, entity.KindDispatchFailure, serr.Kind)
	assert.Equal(t, entity.StepSendOperatorAlert, serr.Step)
	assert.Len(t, repo.messages(), 2)
}

func TestJoin_DispatchTimeout(t *testing.T) {
	repo := &fakeMail{block: true}
	uc := newTestUsecase(t, `
modules:
  waitlist:
    dispatch_timeout_seconds: 1
`, repo)

	err := uc.Join(context.Background(), JoinInput{FullName: "Ada", Email: "ada@example.com"})

	assert.ErrorIs(t, err, entity.ErrDispatchFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
