package inbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/waitlist/internal/pkg/goerror"
	"github.com/shandysiswandi/waitlist/internal/pkg/router"
	"github.com/shandysiswandi/waitlist/internal/waitlist/entity"
	"github.com/shandysiswandi/waitlist/internal/waitlist/usecase"
)

const msgJoinFailed = "Failed to process waitlist submission"

type HTTPEndpoint struct {
	uc uc
}

// Join registers a prospective user on the waitlist.
// @Summary Join waitlist
// @Description Sends a confirmation email to the registrant and, when enabled, alerts the operator mailbox.
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param request body JoinRequest true "Registration payload"
// @Success 200 {object} router.successResponse "Successfully joined waitlist"
// @Failure 500 {object} router.errorResponse "Failed to process waitlist submission"
// @Router /api/waitlist [post]
func (h *HTTPEndpoint) Join(r *router.Request) (any, error) {
	var req JoinRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, h.failed(r.Context(), entity.NewSubmissionError(entity.KindMalformedInput, entity.StepDecode, err))
	}

	err := h.uc.Join(r.Context(), usecase.JoinInput{
		FullName:     req.FullName,
		Email:        req.Email,
		FieldOfStudy: req.FieldOfStudy,
	})
	if err != nil {
		return nil, h.failed(r.Context(), err)
	}

	return JoinResponse{}, nil
}

// failed logs the typed cause and hides it behind the single client-facing
// failure message.
func (h *HTTPEndpoint) failed(ctx context.Context, err error) error {
	kind, step := "unknown", ""

	var serr *entity.SubmissionError
	if errors.As(err, &serr) {
		kind, step = serr.Kind.String(), string(serr.Step)
	}

	slog.ErrorContext(ctx, "waitlist submission failed", "kind", kind, "step", step, "error", err)

	return goerror.NewServerWithMessage(err, msgJoinFailed)
}
