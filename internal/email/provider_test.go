package email

import (
	"testing"

	"github.com/formflow/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestResolve_GmailTakesPrecedence(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{
		Service:      "gmail",
		User:         "owner@gmail.com",
		Password:     "app-password",
		ResendAPIKey: "re_123", // must lose to explicit gmail config
	}, zap.NewNop())

	provider, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, TransportGmail, provider.Transport.Kind())
	assert.Equal(t, "owner@gmail.com", provider.FromAddress)
}

func TestResolve_GmailUsesExplicitFromAddress(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{
		Service:   "gmail",
		User:      "owner@gmail.com",
		Password:  "app-password",
		FromEmail: "noreply@acme.com",
	}, zap.NewNop())

	provider, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, "noreply@acme.com", provider.FromAddress)
}

func TestResolve_ResendWhenNoGmailConfig(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{
		ResendAPIKey: "re_123",
	}, zap.NewNop())

	provider, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, TransportResend, provider.Transport.Kind())
	assert.Equal(t, defaultFromEmail, provider.FromAddress)
}

func TestResolve_IncompleteGmailConfigFallsThrough(t *testing.T) {
	// service flag without a password is not explicit gmail configuration
	resolver := NewResolver(config.EmailConfig{
		Service:      "gmail",
		User:         "owner@gmail.com",
		ResendAPIKey: "re_123",
	}, zap.NewNop())

	provider, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, TransportResend, provider.Transport.Kind())
}

func TestResolve_ProductionUnconfiguredFailsClosed(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{}, zap.NewNop())

	_, err := resolver.Resolve()
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestResolve_LocalModeGetsConsoleTransport(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{LocalMode: true}, zap.NewNop())

	provider, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Equal(t, TransportConsole, provider.Transport.Kind())
}

func TestResolve_IsCached(t *testing.T) {
	resolver := NewResolver(config.EmailConfig{LocalMode: true}, zap.NewNop())

	first, err := resolver.Resolve()
	assert.NoError(t, err)
	second, err := resolver.Resolve()
	assert.NoError(t, err)
	assert.Same(t, first.Transport, second.Transport)
}
