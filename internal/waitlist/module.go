package waitlist

import (
	"log/slog"

	"github.com/shandysiswandi/waitlist/internal/pkg/clock"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
	"github.com/shandysiswandi/waitlist/internal/pkg/instrument"
	"github.com/shandysiswandi/waitlist/internal/pkg/mail"
	"github.com/shandysiswandi/waitlist/internal/pkg/router"
	"github.com/shandysiswandi/waitlist/internal/pkg/validator"
	"github.com/shandysiswandi/waitlist/internal/waitlist/inbound"
	"github.com/shandysiswandi/waitlist/internal/waitlist/outbound/email"
	"github.com/shandysiswandi/waitlist/internal/waitlist/usecase"
)

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	Validator  validator.Validator
	Router     *router.Router
	Mail       mail.Mail
}

func New(dep Dependency) error {
	if dep.Config.GetBool("modules.waitlist.notify_operator") && len(dep.Config.GetArray("modules.waitlist.operator_emails")) == 0 {
		slog.Warn("waitlist operator notification is enabled but no operator email is configured, alerts will be skipped")
	}

	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewWaitlist(usecase.Dependency{
		Config:     dep.Config,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		RepoMail:   repoMail,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
