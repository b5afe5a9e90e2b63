// Package circuitbreaker builds the breaker guarding outbound calls to the
// email provider's HTTP API.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// New returns a breaker that opens once half of at least five recent calls
// have failed, and allows two probe requests after a 30 second cooldown.
func New(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    2 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
