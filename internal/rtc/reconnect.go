package rtc

import (
	"math/rand"
	"sync"
	"time"
)

// ReconnectPolicy bounds how aggressively a client re-dials the
// signaling server after losing its transport.
type ReconnectPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 8,
	}
}

// Reconnector is the reconnection state machine: exponential backoff
// with jitter over a fixed attempt budget per endpoint, then rotation
// to the next fallback endpoint. It decides when and where to dial,
// not how; the websocket client owns the dialing.
type Reconnector struct {
	mu        sync.Mutex
	policy    ReconnectPolicy
	endpoints []string
	endpoint  int
	attempts  int
}

func NewReconnector(policy ReconnectPolicy, endpoints []string) *Reconnector {
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = time.Second
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 8
	}
	return &Reconnector{policy: policy, endpoints: endpoints}
}

// Next returns the endpoint to dial and how long to wait first. ok is
// false once every endpoint has exhausted its attempt budget.
func (r *Reconnector) Next() (endpoint string, delay time.Duration, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.endpoints) == 0 {
		return "", 0, false
	}

	if r.attempts >= r.policy.MaxAttempts {
		if r.endpoint+1 >= len(r.endpoints) {
			return "", 0, false
		}
		r.endpoint++
		r.attempts = 0
	}

	// The first dial on an endpoint is immediate; retries back off.
	if r.attempts > 0 {
		delay = r.backoff(r.attempts - 1)
	}
	r.attempts++

	return r.endpoints[r.endpoint], delay, true
}

// Reset clears the attempt counter after a successful connect. The
// endpoint that worked stays current.
func (r *Reconnector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = 0
}

// backoff doubles the base delay per attempt up to the cap, with ±25%
// jitter so a partition's worth of clients do not re-dial in step.
func (r *Reconnector) backoff(attempt int) time.Duration {
	delay := r.policy.BaseDelay
	for i := 0; i < attempt && delay < r.policy.MaxDelay; i++ {
		delay *= 2
	}
	if delay > r.policy.MaxDelay {
		delay = r.policy.MaxDelay
	}

	jitter := time.Duration(float64(delay) * (rand.Float64()*0.5 - 0.25))
	if delay+jitter < r.policy.BaseDelay {
		return r.policy.BaseDelay
	}
	return delay + jitter
}
