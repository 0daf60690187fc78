// Package metrics records portal activity to Prometheus or CloudWatch.
package metrics

import "time"

// Outcomes of a signup or unregister action.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
)

// Recorder receives the portal's measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	CatalogFetch(ok bool, d time.Duration)
	Signup(outcome string)
	Unregister(outcome string)
	LiveClients(n int)
}

// Nop discards everything. Used when METRICS_BACKEND=none and in tests.
type Nop struct{}

func (Nop) CatalogFetch(bool, time.Duration) {}
func (Nop) Signup(string)                    {}
func (Nop) Unregister(string)                {}
func (Nop) LiveClients(int)                  {}
