package alert

import (
	"errors"
	"sync"

	"github.com/Daskott/glucowatch/server/work"
)

type sentEmail struct {
	to      string
	subject string
	body    string
}

// fakeMailer stands in for the smtp client - flip 'failSends' to make
// every delivery attempt error out.
type fakeMailer struct {
	mu        sync.Mutex
	failSends bool
	sent      []sentEmail
}

func (m *fakeMailer) SendEmail(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSends {
		return errors.New("smtp relay unreachable")
	}

	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeEnqueuer struct {
	jobs []work.JobParams
}

func (e *fakeEnqueuer) Perform(job work.JobParams) error {
	e.jobs = append(e.jobs, job)
	return nil
}
