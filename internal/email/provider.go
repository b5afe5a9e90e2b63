package email

import (
	"errors"
	"sync"

	"github.com/formflow/backend/internal/config"
	"go.uber.org/zap"
)

// ErrNoProvider means no email provider is configured outside local mode.
// Dispatch fails closed rather than falling back to embedded credentials.
var ErrNoProvider = errors.New("no email provider configured")

const defaultFromEmail = "noreply@formflow.com"

// ProviderConfig is the resolved transport description. It is immutable once
// resolved and shared read-only across dispatches.
type ProviderConfig struct {
	Transport   Transport
	FromAddress string
}

// Resolver picks the active transport from the configured inputs. The result
// is resolved once per process lifetime; concurrent callers share it.
type Resolver struct {
	cfg    config.EmailConfig
	logger *zap.Logger

	once     sync.Once
	resolved ProviderConfig
	err      error
}

func NewResolver(cfg config.EmailConfig, logger *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: logger}
}

// Resolve applies the provider precedence: explicit Gmail credentials, then a
// Resend API key, then fail closed in production or a console transport in
// local mode.
func (r *Resolver) Resolve() (ProviderConfig, error) {
	r.once.Do(func() {
		r.resolved, r.err = r.resolve()
	})
	return r.resolved, r.err
}

func (r *Resolver) resolve() (ProviderConfig, error) {
	cfg := r.cfg

	if cfg.Service == "gmail" && cfg.User != "" && cfg.Password != "" {
		from := cfg.FromEmail
		if from == "" {
			from = cfg.User
		}
		r.logger.Info("using gmail transport", zap.String("from", from))
		return ProviderConfig{
			Transport:   NewGmailTransport(cfg.User, cfg.Password),
			FromAddress: from,
		}, nil
	}

	if cfg.ResendAPIKey != "" {
		from := cfg.FromEmail
		if from == "" {
			from = defaultFromEmail
		}
		r.logger.Info("using resend transport", zap.String("from", from))
		return ProviderConfig{
			Transport:   NewResendTransport(cfg.ResendAPIKey),
			FromAddress: from,
		}, nil
	}

	if !cfg.LocalMode {
		r.logger.Error("no email provider configured in production",
			zap.String("hint", "set EMAIL_SERVICE=gmail with EMAIL_USER/EMAIL_PASSWORD, or RESEND_API_KEY"),
		)
		return ProviderConfig{}, ErrNoProvider
	}

	r.logger.Warn("no email provider configured, using console transport (local mode)")
	from := cfg.FromEmail
	if from == "" {
		from = defaultFromEmail
	}
	return ProviderConfig{
		Transport:   NewConsoleTransport(r.logger),
		FromAddress: from,
	}, nil
}
