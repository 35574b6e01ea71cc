package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
	"github.com/shandysiswandi/waitlist/internal/pkg/clock"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
	"github.com/shandysiswandi/waitlist/internal/pkg/goroutine"
	"github.com/shandysiswandi/waitlist/internal/pkg/instrument"
	"github.com/shandysiswandi/waitlist/internal/pkg/mail"
	"github.com/shandysiswandi/waitlist/internal/pkg/router"
	"github.com/shandysiswandi/waitlist/internal/pkg/uid"
	"github.com/shandysiswandi/waitlist/internal/pkg/validator"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

func (a *App) initMail() {
	driver := strings.TrimSpace(a.config.GetString("mail.driver"))

	client, err := mail.NewFromDriver(a.ctx, driver, mail.FactoryOptions{
		SMTP: mail.SMTPConfig{
			Host:               a.config.GetString("mail.smtp.host"),
			Port:               a.config.GetInt("mail.smtp.port"),
			Username:           a.config.GetString("mail.smtp.username"),
			Password:           a.config.GetString("mail.smtp.password"),
			From:               a.config.GetString("mail.from"),
			Crypto:             a.config.GetString("mail.smtp.crypto"),
			Timeout:            a.config.GetSecond("mail.smtp.timeout_seconds"),
			InsecureSkipVerify: a.config.GetBool("mail.smtp.insecure_skip_verify"),
		},
		SES: mail.SESOptions{
			Region:           strings.TrimSpace(a.config.GetString("mail.ses.region")),
			Endpoint:         strings.TrimSpace(a.config.GetString("mail.ses.endpoint")),
			AccessKey:        strings.TrimSpace(a.config.GetString("mail.ses.access_key")),
			SecretKey:        strings.TrimSpace(a.config.GetString("mail.ses.secret_key")),
			SessionToken:     strings.TrimSpace(a.config.GetString("mail.ses.session_token")),
			From:             a.config.GetString("mail.from"),
			ConfigurationSet: a.config.GetString("mail.ses.configuration_set"),
		},
		Retry: mail.RetryConfig{
			MaxRetries: uint64(max(a.config.GetInt("mail.retry.max_retries"), 0)),
			BaseDelay:  a.config.GetMillisecond("mail.retry.base_delay_ms"),
			MaxDelay:   a.config.GetMillisecond("mail.retry.max_delay_ms"),
		},
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.mail = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "X-Correlation-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Correlation-ID"},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []closer{
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
