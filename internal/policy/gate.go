// Package policy implements the signing authorization gate. The gate is
// an external-collaborator boundary: a real deployment backs it with a
// biometric prompt or OS keychain policy, the engine only asks yes or no.
package policy

import (
	"time"

	"whisper/internal/domain"
	"whisper/internal/ratelimit"
)

// Static always answers the same way. The zero value denies.
type Static struct {
	Allowed bool
}

func (s Static) IsSigningAuthorized() bool { return s.Allowed }

// Limited authorizes signing through an inner gate while throttling the
// overall signing rate, as a brake on runaway or scripted signing.
type Limited struct {
	inner   domain.PolicyGate
	limiter *ratelimit.Keyed
	now     func() time.Time
}

// NewLimited wraps inner with a signing rate limit.
func NewLimited(inner domain.PolicyGate, perMinute float64, burst int) *Limited {
	return &Limited{
		inner:   inner,
		limiter: ratelimit.NewKeyed(perMinute/60.0, burst, 0),
		now:     time.Now,
	}
}

func (l *Limited) IsSigningAuthorized() bool {
	if l.inner != nil && !l.inner.IsSigningAuthorized() {
		return false
	}
	return l.limiter.Allow("sign", l.now())
}

var (
	_ domain.PolicyGate = Static{}
	_ domain.PolicyGate = (*Limited)(nil)
)
