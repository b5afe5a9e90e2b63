package dispatch

import (
	"sync"
	"time"

	"github.com/formflow/backend/internal/email"
	"go.uber.org/zap"
)

// ClientSource adapts the provider resolver into a SenderSource, building the
// delivery client once for the process lifetime.
type ClientSource struct {
	resolver *email.Resolver
	timeout  time.Duration
	logger   *zap.Logger

	once   sync.Once
	sender Sender
	from   string
	err    error
}

func NewClientSource(resolver *email.Resolver, timeout time.Duration, logger *zap.Logger) *ClientSource {
	return &ClientSource{
		resolver: resolver,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *ClientSource) Sender() (Sender, string, error) {
	s.once.Do(func() {
		provider, err := s.resolver.Resolve()
		if err != nil {
			s.err = err
			return
		}
		s.sender = email.NewClient(provider.Transport, s.timeout, s.logger)
		s.from = provider.FromAddress
	})
	return s.sender, s.from, s.err
}
