package inbound

import (
	"context"

	"github.com/shandysiswandi/waitlist/internal/waitlist/usecase"
)

type uc interface {
	Join(ctx context.Context, in usecase.JoinInput) error
}
