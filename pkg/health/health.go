// Package health serves liveness and readiness probes backed by periodic
// background checks.
//
// A check flips to unhealthy only after FailureThreshold consecutive
// failures and back to healthy after SuccessThreshold consecutive
// successes.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Probe selects which endpoint a check contributes to.
type Probe uint8

const (
	Liveness Probe = iota
	Readiness
)

func (p Probe) String() string {
	if p == Readiness {
		return "readiness"
	}
	return "liveness"
}

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Check describes one registered probe check. Zero thresholds default to
// 3 failures and 1 success.
type Check struct {
	Name             string
	Timeout          time.Duration
	Func             CheckFunc
	FailureThreshold int
	SuccessThreshold int
}

type checkState struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	// Only touched by the goroutine calling run.
	fails int
	oks   int
}

func (s *checkState) run(ctx context.Context) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if err := s.Func(ctx); err != nil {
		msg := err.Error()
		s.lastErr.Store(&msg)
		s.oks = 0
		s.fails++
		if s.fails >= s.FailureThreshold {
			s.healthy.Store(false)
		}
		return
	}

	s.lastErr.Store(nil)
	s.fails = 0
	s.oks++
	if s.oks >= s.SuccessThreshold {
		s.healthy.Store(true)
	}
}

func (s *checkState) failure() string {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return "check is unhealthy"
}

// Health tracks probe checks for one process. It starts not ready.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks [2][]*checkState
	cancel context.CancelFunc
}

// New returns an empty Health.
func New() *Health {
	return &Health{}
}

// Register adds c to probe p. Checks start healthy.
func (h *Health) Register(p Probe, c Check) {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
	s := &checkState{Check: c}
	s.healthy.Store(true)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[p] = append(h.checks[p], s)
}

// Start runs every registered check immediately and then each interval
// until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	var all []*checkState
	for _, checks := range h.checks {
		all = append(all, checks...)
	}
	h.mu.Unlock()

	for _, s := range all {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				s.run(ctx)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop cancels background checks. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady toggles the manual readiness gate.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Failures returns the failing checks of probe p by name. Readiness also
// reports the manual gate as "_readiness".
func (h *Health) Failures(p Probe) map[string]string {
	h.mu.RLock()
	checks := h.checks[p]
	h.mu.RUnlock()

	failures := make(map[string]string)
	for _, s := range checks {
		if !s.healthy.Load() {
			failures[s.Name] = s.failure()
		}
	}
	if p == Readiness && !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	return failures
}

// IsReady reports whether the gate is open and all readiness checks pass.
func (h *Health) IsReady() bool {
	return len(h.Failures(Readiness)) == 0
}

// Handler serves probe p: 200 {"status":"ok"} or 503 with failing checks.
func (h *Health) Handler(p Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		failures := h.Failures(p)

		e := jx.GetEncoder()
		defer jx.PutEncoder(e)
		e.Obj(func(e *jx.Encoder) {
			if len(failures) == 0 {
				e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
				return
			}
			e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
			e.Field("checks", func(e *jx.Encoder) {
				names := make([]string, 0, len(failures))
				for name := range failures {
					names = append(names, name)
				}
				sort.Strings(names)
				e.Obj(func(e *jx.Encoder) {
					for _, name := range names {
						e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
					}
				})
			})
		})

		w.Header().Set("Content-Type", "application/json")
		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = w.Write(e.Bytes())
	}
}
