package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingEnrollments carries the username from a just-completed login to the
// OTP setup page. Tickets are claim-once and short-lived; reaching the setup
// page without a live ticket means the visit did not come from a login
// transition and is denied. Nothing here survives a restart, on purpose.
type PendingEnrollments struct {
	mu      sync.Mutex
	tickets map[string]pendingEnrollment
	ttl     time.Duration
	now     func() time.Time
}

type pendingEnrollment struct {
	username string
	expires  time.Time
}

const DefaultEnrollmentTTL = 2 * time.Minute

func NewPendingEnrollments(ttl time.Duration) *PendingEnrollments {
	if ttl <= 0 {
		ttl = DefaultEnrollmentTTL
	}
	return &PendingEnrollments{
		tickets: make(map[string]pendingEnrollment),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (p *PendingEnrollments) Issue(username string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for t, e := range p.tickets {
		if e.expires.Before(now) {
			delete(p.tickets, t)
		}
	}
	ticket := uuid.NewString()
	p.tickets[ticket] = pendingEnrollment{username: username, expires: now.Add(p.ttl)}
	return ticket
}

// Claim consumes the ticket. A second claim of the same ticket fails.
func (p *PendingEnrollments) Claim(ticket string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.tickets[ticket]
	if !ok {
		return "", false
	}
	delete(p.tickets, ticket)
	if e.expires.Before(p.now()) {
		return "", false
	}
	return e.username, true
}
