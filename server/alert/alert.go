// Package alert houses the emergency contact provisioning flow, the
// threshold alert notifier & the contact dashboard aggregator.
package alert

import (
	"github.com/Daskott/glucowatch/server/logger"
	"github.com/Daskott/glucowatch/server/work"
)

var logg = logger.NewLogger()

// Mailer is the outbound email capability - injected so tests can
// substitute a double, rather than a module-level transport handle.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// Texter is the optional SMS capability.
type Texter interface {
	SendMessage(to, msg string) error
}

// Enqueuer hands failed deliveries to the job queue for bounded retries.
type Enqueuer interface {
	Perform(job work.JobParams) error
}

type Service struct {
	mailer Mailer
	texter Texter
	pool   Enqueuer
	appUrl string
}

// NewService wires the alerting flow. 'texter' & 'pool' may be nil -
// SMS copies & delivery retries are then skipped.
func NewService(mailer Mailer, texter Texter, pool Enqueuer, appUrl string) *Service {
	return &Service{
		mailer: mailer,
		texter: texter,
		pool:   pool,
		appUrl: appUrl,
	}
}

type ContactParams struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type Thresholds struct {
	LowThreshold  float64 `json:"lowThreshold" validate:"required,gt=0"`
	HighThreshold float64 `json:"highThreshold" validate:"required,gtfield=LowThreshold"`
}
