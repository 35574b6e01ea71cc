package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/waitlist/internal/waitlist"
)

func (a *App) initModules() {
	if err := waitlist.New(waitlist.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		Mail:       a.mail,
	}); err != nil {
		slog.Error("failed to init module waitlist", "error", err)
		os.Exit(1)
	}
}
